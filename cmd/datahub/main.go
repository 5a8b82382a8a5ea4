package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/David-Botos/datahub/pkg/config"
)

var (
	// Global flags
	verbose bool
	envFile string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "datahub",
	Short: "Harmonize per-subject records from heterogeneous tabular files",
	Long: `datahub reads CSV, TXT, XLS, XLSX and PDF files, detects the subject
identifier (codice fiscale) each one refers to, and merges the rows that
belong to the same subject into a single report.

Configuration is read from the environment, an optional .env file and
the YAML file named by DATAHUB_CONFIG.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger, err = buildLogger(cfg, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	rootCmd.AddCommand(inspectCmd, harmonizeCmd, mergeCmd, queryCmd)
}

// buildLogger creates the process logger from LOG_FORMAT and LOG_LEVEL
func buildLogger(c *config.Config, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
