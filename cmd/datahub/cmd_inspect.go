package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/David-Botos/datahub/pkg/ingest"
	"github.com/David-Botos/datahub/pkg/session"
)

// inspectCmd previews files and the identifier detected in each
var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Show columns, row counts and the detected CF of each file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	files, err := readSourceFiles(args)
	if err != nil {
		return err
	}

	in := newIngester()
	batch, err := in.Ingest(files, 0)
	out := cmd.OutOrStdout()
	printBatch(out, batch)
	if err != nil {
		return err
	}

	s := batch.Summary
	fmt.Fprintf(out, "\n%d of %d files readable, %d rows\n", s.SuccessfulFiles, s.TotalFiles, s.TotalRows)
	printWorkspace(out, in.Workspace())
	printErrorSummary(out, in.Errors())
	return nil
}

func printWorkspace(w io.Writer, ws *session.Workspace) {
	if ws == nil || ws.Len() == 0 {
		return
	}
	fmt.Fprintf(w, "loaded (%d): %s\n", ws.Len(), strings.Join(ws.Names(), ", "))
}

// printErrorSummary lists error counts per category with one sample each,
// then the files that had errors
func printErrorSummary(w io.Writer, eh *ingest.ErrorHandler) {
	summary := eh.GetErrorSummary()
	if len(summary) == 0 {
		return
	}

	categories := make([]ingest.ErrorCategory, 0, len(summary))
	for c := range summary {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	samples := eh.GetErrorSamples()
	fmt.Fprintln(w, "errors:")
	for _, c := range categories {
		line := fmt.Sprintf("  %s: %d", c, summary[c])
		if s := samples[c]; len(s) > 0 {
			line += fmt.Sprintf(" (e.g. %s: %s)", s[0].File, s[0].Message)
		}
		fmt.Fprintln(w, line)
	}

	counts := eh.GetFileErrorCounts()
	files := make([]string, 0, len(counts))
	for f := range counts {
		files = append(files, f)
	}
	sort.Strings(files)
	for i, f := range files {
		files[i] = fmt.Sprintf("%s (%d)", f, counts[f])
	}
	if len(files) > 0 {
		fmt.Fprintf(w, "files with errors: %s\n", strings.Join(files, ", "))
	}
}
