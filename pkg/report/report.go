// pkg/report/report.go
package report

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/model"
)

// Format is an export format for harmonized records
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ErrUnsupportedFormat is returned for formats the renderer cannot produce
var ErrUnsupportedFormat = errors.New("unsupported report format")

// ParseFormat validates a user supplied format name (case-insensitive)
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Options controls the PDF layout
type Options struct {
	// Maximum number of record lines in a PDF report
	RowCap int
	// Maximum characters shown per value in a PDF report
	ValueWidth int
}

// DefaultOptions returns the default PDF layout
func DefaultOptions() Options {
	return Options{
		RowCap:     50,
		ValueWidth: 30,
	}
}

// Renderer serializes harmonized records. It only reads the records.
type Renderer struct {
	logger *zap.Logger
	opts   Options
}

// NewRenderer creates a Renderer. Non-positive options fall back to defaults.
func NewRenderer(logger *zap.Logger, opts Options) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.RowCap <= 0 {
		opts.RowCap = def.RowCap
	}
	if opts.ValueWidth <= 0 {
		opts.ValueWidth = def.ValueWidth
	}
	return &Renderer{logger: logger, opts: opts}
}

// Render serializes records in the given format. month is only shown in
// PDF reports; 0 means no month was selected.
func (r *Renderer) Render(records *model.Table, canonicalID string, format Format, month int) ([]byte, error) {
	if records == nil {
		records = model.Empty()
	}

	var (
		out []byte
		err error
	)
	switch format {
	case FormatCSV:
		out, err = renderCSV(records)
	case FormatXLSX:
		out, err = renderXLSX(records)
	case FormatPDF:
		out, err = renderPDF(r.Layout(records, canonicalID, month))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", format, err)
	}

	r.logger.Info("Rendered report",
		zap.String("canonical_id", canonicalID),
		zap.String("format", string(format)),
		zap.Int("rows", records.NumRows()),
		zap.Int("bytes", len(out)))
	return out, nil
}

// FileName returns the download name of a report
func FileName(canonicalID string, format Format) string {
	return "report_" + canonicalID + "." + string(format)
}
