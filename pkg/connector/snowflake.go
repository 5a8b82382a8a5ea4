// pkg/connector/snowflake.go
package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/config"
)

const snowflakeListTables = `SELECT table_name FROM information_schema.tables
	WHERE table_schema = COALESCE(NULLIF(UPPER(?), ''), CURRENT_SCHEMA()) AND table_type = 'BASE TABLE'
	ORDER BY table_name`

// NewSnowflakeSource opens a read-only Snowflake source
func NewSnowflakeSource(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*SQLSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("snowflake-source")

	// Log connection attempt (without credentials)
	if sf := cfg.Snowflake; sf != nil {
		logger.Info("Connecting to Snowflake",
			zap.String("account", sf.Account),
			zap.String("user", sf.User),
			zap.String("database", sf.Database),
			zap.String("warehouse", sf.Warehouse),
			zap.String("role", sf.Role))
	} else {
		logger.Info("Connecting to Snowflake")
	}

	dsn, err := cfg.DataSourceName()
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	ApplyConnectionSettings(db.DB, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime)

	if err := PingWithTimeout(ctx, db.DB, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	if cfg.QueryTimeout > 0 {
		_, err = db.ExecContext(ctx,
			fmt.Sprintf("ALTER SESSION SET STATEMENT_TIMEOUT_IN_SECONDS = %d", int(cfg.QueryTimeout.Seconds())))
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	LogConnectionStats(logger, "snowflake", db.DB)
	return newSQLSource(db, "snowflake", logger, cfg.QueryTimeout, snowflakeListTables), nil
}
