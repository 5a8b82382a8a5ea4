package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/David-Botos/datahub/pkg/cleaner"
	"github.com/David-Botos/datahub/pkg/merge"
	"github.com/David-Botos/datahub/pkg/model"
	"github.com/David-Botos/datahub/pkg/report"
)

var mergeOut string

// mergeCmd concatenates files over the columns they all share
var mergeCmd = &cobra.Command{
	Use:   "merge FILE...",
	Short: "Concatenate files restricted to their common columns",
	Long: `Normalizes column names (lower case, spaces to underscores) and
writes the rows of every file over the columns all files share.
Fails when the files have no column in common.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeOut, "out", "dati_armonizzati.csv", "Output CSV file")
}

func runMerge(cmd *cobra.Command, args []string) error {
	files, err := readSourceFiles(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	batch, err := newIngester().Ingest(files, 0)
	printBatch(out, batch)
	if err != nil {
		return err
	}
	if len(batch.Inputs) == 0 {
		return fmt.Errorf("no readable files to merge")
	}

	tables := make([]model.NormalizedTable, len(batch.Inputs))
	for i, in := range batch.Inputs {
		tables[i] = in.Table
	}
	merged, err := merge.Intersect(cleaner.New(logger), tables)
	if err != nil {
		return err
	}

	data, err := report.NewRenderer(logger, cfg.ReportOptions()).Render(merged, "", report.FormatCSV, 0)
	if err != nil {
		return err
	}
	path, err := writeOutput(filepath.Dir(mergeOut), filepath.Base(mergeOut), data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d rows over %d common columns written to %s\n", merged.NumRows(), merged.NumColumns(), path)
	return nil
}
