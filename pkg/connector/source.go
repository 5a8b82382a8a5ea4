// pkg/connector/source.go
package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/converter"
	"github.com/David-Botos/datahub/pkg/model"
)

// SQLSource is a TableSource over any database/sql driver
type SQLSource struct {
	db        *sqlx.DB
	name      string
	logger    *zap.Logger
	converter *converter.TypeConverter
	timeout   time.Duration

	// listQuery returns one table name per row; it takes the schema as its only argument
	listQuery string
}

func newSQLSource(db *sqlx.DB, name string, logger *zap.Logger, timeout time.Duration, listQuery string) *SQLSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &SQLSource{
		db:     db,
		name:   name,
		logger: logger,
		converter: converter.NewTypeConverterWithConfig(logger, converter.TypeConverterConfig{
			EmptyStringAsAbsent: false,
			InferNumeric:        false,
		}),
		timeout:   timeout,
		listQuery: listQuery,
	}
}

// DB returns the underlying database handle
func (s *SQLSource) DB() *sqlx.DB {
	return s.db
}

// QueryTable runs query and types each value from the driver: NULL is
// absent, numbers are numeric, times are dates, everything else is text
func (s *SQLSource) QueryTable(ctx context.Context, query string, args ...interface{}) (*model.Table, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryxContext(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	table, err := model.NewTable(columns)
	if err != nil {
		return nil, fmt.Errorf("result columns: %w", err)
	}

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", table.NumRows(), err)
		}
		cells := make([]model.Cell, len(values))
		for i, v := range values {
			cells[i] = s.converter.ConvertValue(v)
		}
		if err := table.AppendRow(cells); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	s.logger.Info("Read table from database",
		zap.String("database", s.name),
		zap.Int("columns", table.NumColumns()),
		zap.Int("rows", table.NumRows()))
	return table, nil
}

// ReadTable returns every row of a table. Names are quoted as given.
func (s *SQLSource) ReadTable(ctx context.Context, schema, table string) (*model.Table, error) {
	return s.QueryTable(ctx, "SELECT * FROM "+QualifiedName(schema, table))
}

// ListTables returns the table names in schema
func (s *SQLSource) ListTables(ctx context.Context, schema string) ([]string, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var tables []string
	if err := s.db.SelectContext(queryCtx, &tables, s.db.Rebind(s.listQuery), schema); err != nil {
		return nil, fmt.Errorf("failed to list tables in %q: %w", schema, err)
	}
	return tables, nil
}

// Close closes the database connection
func (s *SQLSource) Close() error {
	s.logger.Info("Closing database connection", zap.String("database", s.name))
	LogConnectionStats(s.logger, s.name, s.db.DB)
	return s.db.Close()
}

// QualifiedName quotes a table name, prefixed by its schema when given
func QualifiedName(schema, table string) string {
	if schema == "" {
		return pq.QuoteIdentifier(table)
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table)
}
