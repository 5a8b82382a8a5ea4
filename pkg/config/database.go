// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"
)

// Supported database drivers
const (
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	DriverSnowflake = "snowflake"
)

// DatabaseConfig describes the optional internal database source
type DatabaseConfig struct {
	Driver string
	DSN    string // takes precedence over the driver specific settings

	Postgres  *PostgresConfig
	Snowflake *SnowflakeConfig

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Query timeout
	QueryTimeout time.Duration
}

// SnowflakeConfig holds Snowflake connection parameters
type SnowflakeConfig struct {
	User          string
	Password      string
	Account       string
	Warehouse     string
	Database      string
	Schema        string
	Role          string
	Authenticator gosnowflake.AuthType
}

// PostgresConfig holds PostgreSQL connection parameters
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// LoadDatabaseConfig reads the database source settings. driver and dsn
// override DATAHUB_DB_DRIVER and DATAHUB_DB_DSN when not empty.
func LoadDatabaseConfig(driver, dsn string) (*DatabaseConfig, error) {
	cfg := &DatabaseConfig{
		Driver:          strings.ToLower(firstNonEmpty(driver, os.Getenv("DATAHUB_DB_DRIVER"))),
		DSN:             firstNonEmpty(dsn, os.Getenv("DATAHUB_DB_DSN")),
		MaxOpenConns:    getEnvAsInt("DATAHUB_DB_MAX_OPEN_CONNS", 4),
		MaxIdleConns:    getEnvAsInt("DATAHUB_DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: time.Duration(getEnvAsInt("DATAHUB_DB_CONN_MAX_LIFETIME_SECONDS", 600)) * time.Second,
		ConnMaxIdleTime: time.Duration(getEnvAsInt("DATAHUB_DB_CONN_MAX_IDLE_TIME_SECONDS", 300)) * time.Second,
		QueryTimeout:    time.Duration(getEnvAsInt("DATAHUB_DB_QUERY_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	if cfg.DSN == "" {
		switch cfg.Driver {
		case DriverPostgres:
			pg, err := LoadPostgresConfig()
			if err != nil {
				return nil, fmt.Errorf("failed to load PostgreSQL configuration: %w", err)
			}
			cfg.Postgres = pg
		case DriverSnowflake:
			sf, err := LoadSnowflakeConfig()
			if err != nil {
				return nil, fmt.Errorf("failed to load Snowflake configuration: %w", err)
			}
			cfg.Snowflake = sf
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the database source can be opened
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres, DriverSnowflake:
	case "":
		return errors.New("database driver is required")
	default:
		return fmt.Errorf("unsupported database driver %q", c.Driver)
	}
	if c.DSN == "" && c.Postgres == nil && c.Snowflake == nil {
		return fmt.Errorf("a DSN is required for the %s driver", c.Driver)
	}
	if c.QueryTimeout <= 0 {
		return errors.New("query timeout must be positive")
	}
	return nil
}

// DataSourceName returns the driver DSN
func (c *DatabaseConfig) DataSourceName() (string, error) {
	switch {
	case c.DSN != "":
		return c.DSN, nil
	case c.Postgres != nil:
		return c.Postgres.ConnectionString(), nil
	case c.Snowflake != nil:
		return c.Snowflake.ConnectionString()
	default:
		return "", errors.New("no database connection settings")
	}
}

// LoadSnowflakeConfig loads Snowflake configuration from environment variables
func LoadSnowflakeConfig() (*SnowflakeConfig, error) {
	user := os.Getenv("SNOWFLAKE_USER")
	if user == "" {
		return nil, errors.New("SNOWFLAKE_USER environment variable is required")
	}

	password := os.Getenv("SNOWFLAKE_PASSWORD")
	if password == "" {
		return nil, errors.New("SNOWFLAKE_PASSWORD environment variable is required")
	}

	account := os.Getenv("SNOWFLAKE_ACCOUNT")
	if account == "" {
		return nil, errors.New("SNOWFLAKE_ACCOUNT environment variable is required")
	}

	// Convert authenticator string to proper type
	var authenticator gosnowflake.AuthType
	switch getEnv("SNOWFLAKE_AUTHENTICATOR", "snowflake") {
	case "oauth":
		authenticator = gosnowflake.AuthTypeOAuth
	case "externalbrowser":
		authenticator = gosnowflake.AuthTypeExternalBrowser
	case "username_password_mfa":
		authenticator = gosnowflake.AuthTypeUsernamePasswordMFA
	case "jwt":
		authenticator = gosnowflake.AuthTypeJwt
	case "token":
		authenticator = gosnowflake.AuthTypeTokenAccessor
	case "okta":
		authenticator = gosnowflake.AuthTypeOkta
	default:
		authenticator = gosnowflake.AuthTypeSnowflake
	}

	return &SnowflakeConfig{
		User:          user,
		Password:      password,
		Account:       account,
		Warehouse:     getEnv("SNOWFLAKE_WAREHOUSE", ""),
		Database:      getEnv("SNOWFLAKE_DATABASE", ""),
		Schema:        getEnv("SNOWFLAKE_SCHEMA", ""),
		Role:          getEnv("SNOWFLAKE_ROLE", ""),
		Authenticator: authenticator,
	}, nil
}

// LoadPostgresConfig loads PostgreSQL configuration from environment variables
func LoadPostgresConfig() (*PostgresConfig, error) {
	user := os.Getenv("POSTGRES_USER")
	if user == "" {
		return nil, errors.New("POSTGRES_USER environment variable is required")
	}

	database := os.Getenv("POSTGRES_DB")
	if database == "" {
		return nil, errors.New("POSTGRES_DB environment variable is required")
	}

	return &PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     getEnvAsInt("POSTGRES_PORT", 5432),
		User:     user,
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Database: database,
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}, nil
}

// ConnectionString returns a Snowflake DSN built by the driver
func (c *SnowflakeConfig) ConnectionString() (string, error) {
	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:       c.Account,
		User:          c.User,
		Password:      c.Password,
		Database:      c.Database,
		Schema:        c.Schema,
		Warehouse:     c.Warehouse,
		Role:          c.Role,
		Authenticator: c.Authenticator,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}
	return dsn, nil
}

// ConnectionString returns a formatted PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
