// pkg/converter/converter.go
package converter

import (
	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/model"
)

// TypeConverter turns raw source values into typed table cells
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for value typing
type TypeConverterConfig struct {
	// Whether to treat empty strings as absent cells
	EmptyStringAsAbsent bool
	// Whether columns whose values all parse as numbers become numeric
	InferNumeric bool
	// Whether to trim surrounding whitespace before typing
	TrimSpace bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		EmptyStringAsAbsent: true,
		InferNumeric:        true,
		TrimSpace:           false,
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

// BuildTable types a header plus raw string rows into a table.
// Rows must already have the header's width.
func (c *TypeConverter) BuildTable(header []string, rows [][]string) (*model.Table, error) {
	table, err := model.NewTable(header)
	if err != nil {
		return nil, err
	}
	for _, raw := range rows {
		cells := make([]model.Cell, len(raw))
		for i, v := range raw {
			cells[i] = c.ParseCell(v)
		}
		if err := table.AppendRow(cells); err != nil {
			return nil, err
		}
	}
	if c.config.InferNumeric {
		c.InferColumns(table)
	}
	return table, nil
}

// InferColumns promotes every column whose non-absent cells all parse as
// numbers to numeric cells. Columns with no values are left alone.
func (c *TypeConverter) InferColumns(table *model.Table) {
	for _, column := range table.Columns() {
		numeric, seen := true, 0
		for r := 0; r < table.NumRows() && numeric; r++ {
			cell, _ := table.Cell(r, column)
			switch cell.Kind {
			case model.KindAbsent:
			case model.KindNumeric:
				seen++
			case model.KindText:
				if _, ok := ParseNumber(cell.Text); !ok {
					numeric = false
				}
				seen++
			default:
				numeric = false
			}
		}
		if !numeric || seen == 0 {
			continue
		}

		for r := 0; r < table.NumRows(); r++ {
			cell, _ := table.Cell(r, column)
			if cell.Kind != model.KindText {
				continue
			}
			n, _ := ParseNumber(cell.Text)
			_ = table.SetCell(r, column, model.NumberCell(n, cell.Text))
		}
		c.logger.Debug("Inferred numeric column", zap.String("column", column))
	}
}
