// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/config"
)

// SourceFactory opens table sources from configuration
type SourceFactory struct {
	logger *zap.Logger
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(logger *zap.Logger) *SourceFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceFactory{logger: logger}
}

// Open connects to the database described by cfg
func (f *SourceFactory) Open(ctx context.Context, cfg *config.DatabaseConfig) (*SQLSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f.logger.Info("Creating table source", zap.String("driver", cfg.Driver))

	var (
		source *SQLSource
		err    error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		dsn, dsnErr := cfg.DataSourceName()
		if dsnErr != nil {
			return nil, dsnErr
		}
		source, err = NewSQLiteSource(ctx, dsn, cfg.QueryTimeout, f.logger)
	case config.DriverPostgres:
		source, err = NewPostgresSource(ctx, cfg, f.logger)
	case config.DriverSnowflake:
		source, err = NewSnowflakeSource(ctx, cfg, f.logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s source: %w", cfg.Driver, err)
	}
	return source, nil
}
