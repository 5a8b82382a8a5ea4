// pkg/connector/sqlite.go
package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// An empty schema lists the main database
const sqliteListTables = `SELECT name FROM pragma_table_list
	WHERE schema = COALESCE(NULLIF(?, ''), 'main') AND type = 'table' AND name NOT LIKE 'sqlite_%'
	ORDER BY name`

// NewSQLiteSource opens an embedded SQLite database
func NewSQLiteSource(ctx context.Context, dsn string, timeout time.Duration, logger *zap.Logger) (*SQLSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("sqlite-source")
	logger.Info("Opening SQLite database", zap.String("dsn", dsn))

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite connection: %w", err)
	}
	// An in-memory database only lives as long as its single connection
	db.SetMaxOpenConns(1)

	if err := PingWithTimeout(ctx, db.DB, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	return newSQLSource(db, dsn, logger, timeout, sqliteListTables), nil
}
