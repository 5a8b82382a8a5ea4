package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/harmonize"
	"github.com/David-Botos/datahub/pkg/report"
)

var (
	harmonizeID       string
	harmonizeMonth    int
	harmonizeFormat   string
	harmonizeOut      string
	harmonizeMaxFiles int
)

// harmonizeCmd runs the full pipeline and writes the report
var harmonizeCmd = &cobra.Command{
	Use:   "harmonize FILE...",
	Short: "Merge the records of one subject across files into a report",
	Long: `Extracts every file, resolves the common CF and writes
report_<CF>.<format> with the rows that mention it.

When the files disagree on the CF, pass it explicitly with --cf.
Files whose CF is missing or different are listed together with a
prefilled notification email.

Example:
  datahub harmonize estratto.pdf pagamenti.xlsx --month 3 --format pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHarmonize,
}

func init() {
	harmonizeCmd.Flags().StringVar(&harmonizeID, "cf", "", "Canonical CF (overrides detection)")
	harmonizeCmd.Flags().IntVar(&harmonizeMonth, "month", 0, "Keep only rows dated in this month (1-12)")
	harmonizeCmd.Flags().StringVar(&harmonizeFormat, "format", "csv", "Report format: csv, xlsx or pdf")
	harmonizeCmd.Flags().StringVar(&harmonizeOut, "out", ".", "Output directory")
	harmonizeCmd.Flags().IntVar(&harmonizeMaxFiles, "max-files", -1, "Use only the first N files (default from DATAHUB_MAX_FILES)")
}

func runHarmonize(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(harmonizeFormat)
	if err != nil {
		return err
	}
	maxFiles := harmonizeMaxFiles
	if maxFiles < 0 {
		maxFiles = cfg.MaxFiles
	}

	files, err := readSourceFiles(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	batch, err := newIngester().Ingest(files, maxFiles)
	printBatch(out, batch)
	if err != nil {
		return err
	}

	result := harmonize.NewEngine(logger).Harmonize(batch.Inputs, harmonizeID)
	return writeReport(out, result, format, harmonizeMonth, harmonizeOut)
}

// writeReport reports mismatches, applies the month filter and writes the rendered records
func writeReport(out io.Writer, result harmonize.Result, format report.Format, month int, dir string) error {
	if result.HasMismatches() {
		id := result.Canonical()
		if id == "" && len(result.DistinctIDs) > 0 {
			id = result.DistinctIDs[0]
		}
		printNotification(out, id, result.Mismatches)
	}

	switch result.Outcome {
	case harmonize.OutcomeUnresolved:
		if len(result.DistinctIDs) > 0 {
			return fmt.Errorf("%w: candidates %s (choose one with --cf)",
				result.Err(), strings.Join(result.DistinctIDs, ", "))
		}
		return fmt.Errorf("%w: no CF detected (pass one with --cf)", result.Err())
	case harmonize.OutcomeNoMatchingRecords:
		return result.Err()
	}

	if month > 0 && !harmonize.HasDateColumn(result.Records) {
		fmt.Fprintf(out, "warning: no %q column, month filter not applied\n", harmonize.DateColumn)
	}
	records, err := harmonize.FilterMonth(result.Records, month)
	if err != nil {
		return err
	}

	id := result.Canonical()
	data, err := report.NewRenderer(logger, cfg.ReportOptions()).Render(records, id, format, month)
	if err != nil {
		return err
	}
	path, err := writeOutput(dir, report.FileName(id, format), data)
	if err != nil {
		return err
	}

	logger.Info("Report written", zap.String("path", path), zap.Int("rows", records.NumRows()))
	fmt.Fprintf(out, "\nCF %s: %d rows written to %s\n", id, records.NumRows(), path)
	return nil
}
