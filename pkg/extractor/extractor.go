// pkg/extractor/extractor.go
package extractor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/converter"
	"github.com/David-Botos/datahub/pkg/model"
)

// ExtractionError reports a payload that could not be read as tabular data.
// Callers skip the file and continue with the rest of the batch.
type ExtractionError struct {
	Filename string
	Format   model.Format
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.Filename, e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Notice is an advisory message about a file that did not fail but may
// not contain what the caller expected
type Notice struct {
	Filename string
	Message  string
}

func (n Notice) String() string {
	return n.Filename + ": " + n.Message
}

// Extractor turns raw file payloads into tables
type Extractor struct {
	logger    *zap.Logger
	converter *converter.TypeConverter // csv and spreadsheet cells
	pdfCells  *converter.TypeConverter // pdf cells stay as read
	openPDF   PDFOpener
}

// Option configures an Extractor
type Option func(*Extractor)

// WithPDFOpener replaces the PDF backend
func WithPDFOpener(open PDFOpener) Option {
	return func(e *Extractor) {
		e.openPDF = open
	}
}

// New creates a new Extractor
func New(logger *zap.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Extractor{
		logger:    logger,
		converter: converter.NewTypeConverter(logger),
		pdfCells: converter.NewTypeConverterWithConfig(logger, converter.TypeConverterConfig{
			EmptyStringAsAbsent: false,
			InferNumeric:        false,
		}),
		openPDF: OpenPDF,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads one source file. Unsupported formats yield an empty table
// and a notice; unreadable payloads yield an *ExtractionError.
func (e *Extractor) Extract(file model.SourceFile) (table *model.Table, notices []Notice, err error) {
	format := file.Format
	if format == model.FormatUnknown {
		format = model.FormatFromName(file.Name)
	}

	// Third-party decoders may panic on malformed input
	defer func() {
		if r := recover(); r != nil {
			table, notices = nil, nil
			err = &ExtractionError{Filename: file.Name, Format: format, Err: fmt.Errorf("decoder panic: %v", r)}
		}
	}()

	switch format {
	case model.FormatCSV, model.FormatTXT:
		table, err = e.extractDelimited(file.Content)
	case model.FormatXLSX:
		table, err = e.extractXLSX(file.Content)
	case model.FormatXLS:
		table, err = e.extractXLS(file.Content)
	case model.FormatPDF:
		var found bool
		table, found, err = e.extractPDF(file.Name, file.Content)
		if err == nil && !found {
			notices = append(notices, Notice{Filename: file.Name, Message: "no table detected in PDF"})
		}
	default:
		e.logger.Warn("Unsupported file format", zap.String("file", file.Name))
		return model.Empty(), []Notice{{Filename: file.Name, Message: "unsupported format"}}, nil
	}

	if err != nil {
		return nil, nil, &ExtractionError{Filename: file.Name, Format: format, Err: err}
	}

	e.logger.Info("Extracted table",
		zap.String("file", file.Name),
		zap.String("format", string(format)),
		zap.Int("columns", table.NumColumns()),
		zap.Int("rows", table.NumRows()))
	return table, notices, nil
}
