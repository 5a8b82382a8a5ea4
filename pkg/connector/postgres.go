// pkg/connector/postgres.go
package connector

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/config"
)

const postgresListTables = `SELECT table_name FROM information_schema.tables
	WHERE table_schema = COALESCE(NULLIF(?, ''), 'public') AND table_type = 'BASE TABLE'
	ORDER BY table_name`

// NewPostgresSource opens a read-only PostgreSQL source
func NewPostgresSource(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*SQLSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("postgres-source")

	if cfg.Postgres != nil {
		logger.Info("Connecting to PostgreSQL",
			zap.String("host", cfg.Postgres.Host),
			zap.Int("port", cfg.Postgres.Port),
			zap.String("database", cfg.Postgres.Database),
			zap.String("user", cfg.Postgres.User))
	} else {
		logger.Info("Connecting to PostgreSQL")
	}

	dsn, err := cfg.DataSourceName()
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	ApplyConnectionSettings(db.DB, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime)

	if err := PingWithTimeout(ctx, db.DB, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if cfg.QueryTimeout > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("SET statement_timeout = %d", cfg.QueryTimeout.Milliseconds())); err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	LogConnectionStats(logger, "postgres", db.DB)
	return newSQLSource(db, "postgres", logger, cfg.QueryTimeout, postgresListTables), nil
}
