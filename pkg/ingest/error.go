// pkg/ingest/error.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/extractor"
	"github.com/David-Botos/datahub/pkg/harmonize"
	"github.com/David-Botos/datahub/pkg/merge"
	"github.com/David-Botos/datahub/pkg/session"
)

// Action defines the recommended action after an error
type Action int

const (
	// ActionContinue keeps the file in the batch despite the error
	ActionContinue Action = iota
	// ActionSkipFile drops the current file and moves on to the next
	ActionSkipFile
	// ActionAbort stops the whole batch
	ActionAbort
)

// String returns a string representation of the action
func (a Action) String() string {
	switch a {
	case ActionContinue:
		return "Continue"
	case ActionSkipFile:
		return "SkipFile"
	case ActionAbort:
		return "Abort"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// ErrorCategory defines categories of errors during ingestion
type ErrorCategory int

const (
	// Error categories with increasing severity
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryWarning
	ErrorCategoryIdentifier
	ErrorCategorySchema
	ErrorCategoryExtraction
	ErrorCategoryCritical
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryWarning:
		return "Warning"
	case ErrorCategoryIdentifier:
		return "Identifier"
	case ErrorCategorySchema:
		return "Schema"
	case ErrorCategoryExtraction:
		return "Extraction"
	case ErrorCategoryCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// ErrThresholdExceeded is returned when a category collects more errors than allowed
var ErrThresholdExceeded = errors.New("error threshold exceeded")

// ErrorRecord represents a single error during ingestion
type ErrorRecord struct {
	Category  ErrorCategory
	File      string
	Column    string
	Error     error
	Message   string // Derived from Error but stored for serialization
	Timestamp time.Time
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:  category,
		Error:     err,
		Timestamp: time.Now(),
	}
	if err != nil {
		record.Message = err.Error()
	}
	return record
}

// WithFile adds file information to the error record
func (r ErrorRecord) WithFile(name string) ErrorRecord {
	r.File = name
	return r
}

// WithColumn adds column information to the error record
func (r ErrorRecord) WithColumn(column string) ErrorRecord {
	r.Column = column
	return r
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))
	if r.File != "" {
		sb.WriteString(fmt.Sprintf("File: %s ", r.File))
	}
	if r.Column != "" {
		sb.WriteString(fmt.Sprintf("Column: %s ", r.Column))
	}
	if r.Error != nil {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Error.Error()))
	} else if r.Message != "" {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Message))
	}
	return sb.String()
}

// ErrorHandler categorizes ingestion errors, keeps counts and samples,
// and decides what the batch does next
type ErrorHandler struct {
	logger          *zap.Logger
	errorThresholds map[ErrorCategory]int
	errorCounts     map[ErrorCategory]int
	sampleErrors    map[ErrorCategory][]ErrorRecord
	fileErrors      map[string]int
	mu              sync.Mutex
	maxSamples      int
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Default error thresholds by category
	thresholds := map[ErrorCategory]int{
		ErrorCategoryWarning:    1000,
		ErrorCategoryIdentifier: 100,
		ErrorCategorySchema:     100,
		ErrorCategoryExtraction: 100,
		ErrorCategoryCritical:   0,
	}

	return &ErrorHandler{
		logger:          logger,
		errorThresholds: thresholds,
		errorCounts:     make(map[ErrorCategory]int),
		sampleErrors:    make(map[ErrorCategory][]ErrorRecord),
		fileErrors:      make(map[string]int),
		maxSamples:      5, // Store up to 5 sample errors per category
	}
}

// SetThreshold changes how many errors of a category are tolerated
func (eh *ErrorHandler) SetThreshold(category ErrorCategory, threshold int) {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	eh.errorThresholds[category] = threshold
}

// CategorizeError determines the category of an error
func (eh *ErrorHandler) CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	var extractErr *extractor.ExtractionError
	var category ErrorCategory

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		category = ErrorCategoryCritical
	case errors.As(err, &extractErr):
		category = ErrorCategoryExtraction
	case errors.Is(err, merge.ErrNoCommonSchema):
		category = ErrorCategorySchema
	case errors.Is(err, harmonize.ErrIdentifierUnresolved):
		category = ErrorCategoryIdentifier
	case errors.Is(err, harmonize.ErrNoMatchingRecords),
		errors.Is(err, session.ErrAlreadyLoaded),
		errors.Is(err, session.ErrNoTabularData):
		category = ErrorCategoryWarning
	default:
		// Unknown failures only cost the file they happened in
		category = ErrorCategoryExtraction
	}

	eh.logger.Debug("Categorized error",
		zap.String("error", err.Error()),
		zap.String("category", category.String()))
	return category
}

// HandleError records an error and determines the action
func (eh *ErrorHandler) HandleError(record ErrorRecord) Action {
	eh.RecordError(record)

	switch record.Category {
	case ErrorCategoryNone, ErrorCategoryWarning, ErrorCategoryIdentifier:
		return ActionContinue
	case ErrorCategorySchema, ErrorCategoryExtraction:
		return ActionSkipFile
	case ErrorCategoryCritical:
		eh.logger.Error("Critical error during ingestion",
			zap.String("file", record.File),
			zap.String("error", record.Message))
		return ActionAbort
	default:
		return ActionContinue
	}
}

// RecordError saves an error occurrence
func (eh *ErrorHandler) RecordError(record ErrorRecord) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	eh.errorCounts[record.Category]++

	samples := eh.sampleErrors[record.Category]
	if len(samples) < eh.maxSamples {
		eh.sampleErrors[record.Category] = append(samples, record)
	}

	if record.File != "" {
		eh.fileErrors[record.File]++
	}

	logLevel := zap.InfoLevel
	switch record.Category {
	case ErrorCategoryWarning, ErrorCategoryIdentifier:
		logLevel = zap.WarnLevel
	case ErrorCategoryCritical:
		logLevel = zap.ErrorLevel
	}

	eh.logger.Log(logLevel, "Ingestion error",
		zap.String("category", record.Category.String()),
		zap.String("file", record.File),
		zap.String("column", record.Column),
		zap.String("error", record.Message))
}

// GetErrorSummary returns error counts by category
func (eh *ErrorHandler) GetErrorSummary() map[ErrorCategory]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	summary := make(map[ErrorCategory]int, len(eh.errorCounts))
	for category, count := range eh.errorCounts {
		summary[category] = count
	}
	return summary
}

// GetErrorSamples returns sample errors for each category
func (eh *ErrorHandler) GetErrorSamples() map[ErrorCategory][]ErrorRecord {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	samples := make(map[ErrorCategory][]ErrorRecord, len(eh.sampleErrors))
	for category, records := range eh.sampleErrors {
		samples[category] = append([]ErrorRecord(nil), records...)
	}
	return samples
}

// GetFileErrorCounts returns error counts by file
func (eh *ErrorHandler) GetFileErrorCounts() map[string]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	counts := make(map[string]int, len(eh.fileErrors))
	for file, count := range eh.fileErrors {
		counts[file] = count
	}
	return counts
}

// IsErrorThresholdExceeded checks if any error category has exceeded its threshold
func (eh *ErrorHandler) IsErrorThresholdExceeded() bool {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	for category, count := range eh.errorCounts {
		threshold, exists := eh.errorThresholds[category]
		if exists && count > threshold {
			return true
		}
	}
	return false
}
