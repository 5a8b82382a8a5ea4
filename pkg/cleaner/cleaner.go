// pkg/cleaner/cleaner.go
package cleaner

import (
	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/model"
)

// ColumnCleaner canonicalizes column names so that the same column coming
// from different sources lines up
type ColumnCleaner struct {
	logger *zap.Logger
}

// New creates a new ColumnCleaner
func New(logger *zap.Logger) *ColumnCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ColumnCleaner{logger: logger}
}

// Normalize renames the table's columns according to mode and returns the
// operations performed. The input table is not modified.
func (c *ColumnCleaner) Normalize(
	source string,
	table *model.Table,
	mode model.NormalizeMode,
) (model.NormalizedTable, []model.ColumnOperation, error) {
	columns := table.Columns()
	renamed := make([]string, 0, len(columns))
	keep := make([]int, 0, len(columns))
	seen := make(map[string]struct{}, len(columns))
	var operations []model.ColumnOperation

	for i, name := range columns {
		newName := NormalizeName(name, mode)

		if _, dup := seen[newName]; dup {
			operations = append(operations, model.ColumnOperation{
				Source:    source,
				Column:    name,
				Operation: "drop_duplicate",
				Reason:    mode.String() + "_normalize",
			})
			continue
		}
		seen[newName] = struct{}{}

		if newName != name {
			operations = append(operations, model.ColumnOperation{
				Source:    source,
				Column:    name,
				NewName:   newName,
				Operation: "rename",
				Reason:    mode.String() + "_normalize",
			})
		}
		renamed = append(renamed, newName)
		keep = append(keep, i)
	}

	out, err := rebuild(table, renamed, keep)
	if err != nil {
		return model.NormalizedTable{}, nil, err
	}

	for _, op := range operations {
		c.logger.Debug("Normalized column",
			zap.String("source", op.Source),
			zap.String("column", op.Column),
			zap.String("new_name", op.NewName),
			zap.String("operation", op.Operation))
	}

	return model.NormalizedTable{Source: source, Mode: mode, Table: out}, operations, nil
}

// rebuild copies the kept columns of table under their new names
func rebuild(table *model.Table, names []string, keep []int) (*model.Table, error) {
	out, err := model.NewTable(names)
	if err != nil {
		return nil, err
	}
	for r := 0; r < table.NumRows(); r++ {
		row := table.Row(r)
		cells := make([]model.Cell, len(keep))
		for i, pos := range keep {
			cells[i] = row[pos]
		}
		if err := out.AppendRow(cells); err != nil {
			return nil, err
		}
	}
	return out, nil
}
