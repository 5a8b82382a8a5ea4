package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/David-Botos/datahub/pkg/cleaner"
	"github.com/David-Botos/datahub/pkg/config"
	"github.com/David-Botos/datahub/pkg/connector"
	"github.com/David-Botos/datahub/pkg/harmonize"
	"github.com/David-Botos/datahub/pkg/identifier"
	"github.com/David-Botos/datahub/pkg/model"
	"github.com/David-Botos/datahub/pkg/report"
)

var (
	queryDriver  string
	querySQL     string
	queryDSN     string
	querySchema  string
	queryTable   string
	queryID      string
	queryMonth   int
	queryFormat  string
	queryOut     string
	queryTimeout time.Duration
)

// queryCmd harmonizes a table read from the internal database
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Harmonize records read from a database table or query",
	Long: `Reads records from SQLite, PostgreSQL or Snowflake and runs them
through the same identifier detection and report as files.
The database is only read. Without --sql or --table the tables of
--schema are listed.

Examples:
  datahub query --driver sqlite --dsn archive.db
  datahub query --driver sqlite --dsn archive.db --table pagamenti --cf ABCD1234EFGH5678
  datahub query --driver postgres --sql "SELECT * FROM ledger WHERE anno = 2024"`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryDriver, "driver", "", "Database driver: sqlite, postgres or snowflake (default DATAHUB_DB_DRIVER)")
	queryCmd.Flags().StringVar(&queryDSN, "dsn", "", "Data source name (default DATAHUB_DB_DSN or driver settings)")
	queryCmd.Flags().StringVar(&querySQL, "sql", "", "Query to run")
	queryCmd.Flags().StringVar(&querySchema, "schema", "", "Schema of --table")
	queryCmd.Flags().StringVar(&queryTable, "table", "", "Table to read entirely")
	queryCmd.Flags().StringVar(&queryID, "cf", "", "Canonical CF (overrides detection)")
	queryCmd.Flags().IntVar(&queryMonth, "month", 0, "Keep only rows dated in this month (1-12)")
	queryCmd.Flags().StringVar(&queryFormat, "format", "csv", "Report format: csv, xlsx or pdf")
	queryCmd.Flags().StringVar(&queryOut, "out", ".", "Output directory")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 2*time.Minute, "Overall timeout")
	queryCmd.MarkFlagsMutuallyExclusive("sql", "table")
}

func runQuery(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(queryFormat)
	if err != nil {
		return err
	}

	dbCfg, err := config.LoadDatabaseConfig(queryDriver, queryDSN)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
	defer cancel()

	source, err := connector.NewSourceFactory(logger).Open(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer source.Close()

	out := cmd.OutOrStdout()
	if querySQL == "" && queryTable == "" {
		return listTables(ctx, out, source)
	}

	name := "query"
	var table *model.Table
	if queryTable != "" {
		name = connector.QualifiedName(querySchema, queryTable)
		table, err = source.ReadTable(ctx, querySchema, queryTable)
	} else {
		table, err = source.QueryTable(ctx, querySQL)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d rows, %d columns\n", name, table.NumRows(), table.NumColumns())

	normalized, _, err := cleaner.New(logger).Normalize(name, table, model.NormalizeDisplay)
	if err != nil {
		return err
	}
	candidate := identifier.NewResolver(logger, cfg.IDFragments).Resolve(normalized.Table)

	result := harmonize.NewEngine(logger).Harmonize([]harmonize.Input{{
		Filename:  name,
		Table:     normalized,
		Candidate: candidate,
	}}, queryID)
	return writeReport(out, result, format, queryMonth, queryOut)
}

// listTables prints the tables a query could read
func listTables(ctx context.Context, out io.Writer, source connector.TableSource) error {
	tables, err := source.ListTables(ctx, querySchema)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		return errors.New("no tables found; pass --sql or --table")
	}
	fmt.Fprintln(out, "tables (use --table NAME):")
	for _, t := range tables {
		fmt.Fprintf(out, "  %s\n", t)
	}
	return nil
}
