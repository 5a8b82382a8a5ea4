package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/David-Botos/datahub/pkg/extractor"
	"github.com/David-Botos/datahub/pkg/identifier"
	"github.com/David-Botos/datahub/pkg/ingest"
	"github.com/David-Botos/datahub/pkg/model"
	"github.com/David-Botos/datahub/pkg/report"
	"github.com/David-Botos/datahub/pkg/session"
)

// readSourceFiles loads the named files, rejecting unsupported extensions up front
func readSourceFiles(paths []string) ([]model.SourceFile, error) {
	files := make([]model.SourceFile, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if !model.FormatFromName(name).Supported() {
			return nil, fmt.Errorf("%s: unsupported file type (expected csv, txt, xls, xlsx or pdf)", p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		files = append(files, model.NewSourceFile(name, data))
	}
	return files, nil
}

// newIngester wires the file pipeline from the loaded configuration
func newIngester() *ingest.Ingester {
	return ingest.NewIngester(
		logger,
		extractor.New(logger),
		identifier.NewResolver(logger, cfg.IDFragments),
		session.NewWorkspace(logger),
	)
}

// printBatch writes one line per file with its detected identifier
func printBatch(w io.Writer, batch *ingest.Batch) {
	for _, r := range batch.Results {
		status := "ok"
		if !r.Success {
			status = "skipped"
		}
		fmt.Fprintf(w, "%s [%s] %s: %d rows, columns: %s\n",
			r.File, r.Format, status, r.Rows, strings.Join(r.Columns, ", "))
		switch {
		case r.Candidate.HasValue():
			verified := ""
			if !r.Candidate.Verified {
				verified = " (unverified)"
			}
			fmt.Fprintf(w, "  CF: %s%s in column %q\n", r.Candidate.ValueString(), verified, r.Candidate.ColumnName())
		case r.Success:
			fmt.Fprintln(w, "  CF: not found")
		}
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  error: %s\n", e.String())
		}
	}
	if len(batch.Summary.IgnoredFiles) > 0 {
		fmt.Fprintf(w, "ignored (file limit): %s\n", strings.Join(batch.Summary.IgnoredFiles, ", "))
	}
}

// printNotification writes a prefilled email for files with a missing or different identifier
func printNotification(w io.Writer, canonicalID string, files []string) {
	n := report.ComposeNotification(canonicalID, report.MismatchProblem, files, cfg.NotifyRecipient)
	fmt.Fprintf(w, "\nWARNING: %s\n", report.MismatchProblem)
	fmt.Fprintf(w, "Subject: %s\n\n%s\n\n%s\n", n.Subject, n.Body, n.MailtoLink)
}

// writeOutput writes data to dir/name, creating dir when needed
func writeOutput(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
