// pkg/ingest/job.go
package ingest

import (
	"time"

	"github.com/google/uuid"

	"github.com/David-Botos/datahub/pkg/model"
)

// FileJob represents one file waiting to be ingested
type FileJob struct {
	ID        string       // Unique job identifier
	File      string       // Source filename
	Format    model.Format // Format declared by the extension
	Size      int          // Payload size in bytes
	CreatedAt time.Time    // Job creation timestamp
}

// NewFileJob creates a job for a source file
func NewFileJob(file model.SourceFile) FileJob {
	format := file.Format
	if format == model.FormatUnknown {
		format = model.FormatFromName(file.Name)
	}
	return FileJob{
		ID:        uuid.New().String(),
		File:      file.Name,
		Format:    format,
		Size:      len(file.Content),
		CreatedAt: time.Now(),
	}
}

// FileResult represents the outcome of ingesting one file
type FileResult struct {
	JobID              string
	File               string
	Format             model.Format
	Success            bool
	Cached             bool // table reused from the workspace
	Rows               int
	Columns            []string
	CleaningOperations int
	Candidate          model.IdentifierCandidate
	Errors             []ErrorRecord
	Warnings           []string
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// NewFileResult initializes a result for a job
func NewFileResult(job FileJob) *FileResult {
	return &FileResult{
		JobID:     job.ID,
		File:      job.File,
		Format:    job.Format,
		StartTime: time.Now(),
	}
}

// Complete marks the file as done and calculates duration
func (r *FileResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// AddError adds an error to the result
func (r *FileResult) AddError(err ErrorRecord) {
	r.Errors = append(r.Errors, err)
}

// AddWarning adds a warning to the result
func (r *FileResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// HasErrors checks if any errors occurred
func (r *FileResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// BatchSummary represents the totals of one ingestion batch
type BatchSummary struct {
	BatchID          string
	TotalFiles       int
	SuccessfulFiles  int
	FailedFiles      []string
	IgnoredFiles     []string // beyond the file limit
	TotalRows        int
	TotalCleaningOps int
	ErrorCategories  map[ErrorCategory]int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

// NewBatchSummary initializes a new batch summary
func NewBatchSummary() *BatchSummary {
	return &BatchSummary{
		BatchID:         uuid.New().String(),
		StartTime:       time.Now(),
		ErrorCategories: make(map[ErrorCategory]int),
	}
}

// AddFileResult incorporates a file result into the summary
func (s *BatchSummary) AddFileResult(result *FileResult) {
	s.TotalFiles++
	if result.Success {
		s.SuccessfulFiles++
		s.TotalRows += result.Rows
		s.TotalCleaningOps += result.CleaningOperations
	} else {
		s.FailedFiles = append(s.FailedFiles, result.File)
	}
	for _, e := range result.Errors {
		s.ErrorCategories[e.Category]++
	}
}

// Complete marks the batch as complete and calculates duration
func (s *BatchSummary) Complete() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// SuccessRate returns the percentage of files successfully ingested
func (s *BatchSummary) SuccessRate() float64 {
	if s.TotalFiles == 0 {
		return 0
	}
	return float64(s.SuccessfulFiles) / float64(s.TotalFiles) * 100
}
