// pkg/ingest/ingester.go
package ingest

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/cleaner"
	"github.com/David-Botos/datahub/pkg/extractor"
	"github.com/David-Botos/datahub/pkg/harmonize"
	"github.com/David-Botos/datahub/pkg/identifier"
	"github.com/David-Botos/datahub/pkg/model"
	"github.com/David-Botos/datahub/pkg/session"
)

var errMissingIdentifier = errors.New("no identifier candidate found")

// Batch is the outcome of ingesting a set of files
type Batch struct {
	Results []*FileResult
	Inputs  []harmonize.Input // successful files, in input order
	Summary *BatchSummary
}

// Ingester runs extract, display normalization and identifier resolution
// for each file of a batch, isolating failures per file
type Ingester struct {
	logger    *zap.Logger
	extractor *extractor.Extractor
	cleaner   *cleaner.ColumnCleaner
	resolver  *identifier.Resolver
	errors    *ErrorHandler
	workspace *session.Workspace
}

// NewIngester creates an Ingester. workspace may be nil; when set, files
// already loaded in it are reused instead of being extracted again.
func NewIngester(
	logger *zap.Logger,
	ext *extractor.Extractor,
	resolver *identifier.Resolver,
	workspace *session.Workspace,
) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ext == nil {
		ext = extractor.New(logger)
	}
	if resolver == nil {
		resolver = identifier.NewResolver(logger, nil)
	}
	return &Ingester{
		logger:    logger,
		extractor: ext,
		cleaner:   cleaner.New(logger),
		resolver:  resolver,
		errors:    NewErrorHandler(logger),
		workspace: workspace,
	}
}

// Workspace returns the workspace tables are loaded into, or nil
func (in *Ingester) Workspace() *session.Workspace {
	return in.workspace
}

// Errors exposes the batch error handler
func (in *Ingester) Errors() *ErrorHandler {
	return in.errors
}

// Ingest processes files in order. Only the first maxFiles files are used
// when maxFiles > 0. The returned error is non-nil only when the batch was
// aborted; the Batch then holds what was processed so far.
func (in *Ingester) Ingest(files []model.SourceFile, maxFiles int) (*Batch, error) {
	summary := NewBatchSummary()
	batch := &Batch{Summary: summary}
	defer summary.Complete()

	if maxFiles > 0 && len(files) > maxFiles {
		for _, f := range files[maxFiles:] {
			summary.IgnoredFiles = append(summary.IgnoredFiles, f.Name)
		}
		in.logger.Info("Ignoring files beyond the limit",
			zap.Int("limit", maxFiles),
			zap.Strings("ignored", summary.IgnoredFiles))
		files = files[:maxFiles]
	}

	in.logger.Info("Starting ingestion batch",
		zap.String("batch", summary.BatchID),
		zap.Int("files", len(files)))

	seen := make(map[string]bool, len(files))
	for _, file := range files {
		job := NewFileJob(file)
		var (
			result *FileResult
			input  *harmonize.Input
			action Action
		)
		if seen[file.Name] {
			result, action = in.skipDuplicate(job)
		} else {
			seen[file.Name] = true
			result, input, action = in.ingestFile(job, file)
		}
		batch.Results = append(batch.Results, result)
		summary.AddFileResult(result)
		if input != nil {
			batch.Inputs = append(batch.Inputs, *input)
		}

		if action == ActionAbort {
			return batch, fmt.Errorf("ingestion aborted at %s: %s", job.File, result.Errors[len(result.Errors)-1].Message)
		}
		if in.errors.IsErrorThresholdExceeded() {
			return batch, fmt.Errorf("ingestion aborted at %s: %w", job.File, ErrThresholdExceeded)
		}
	}

	in.logger.Info("Ingestion batch complete",
		zap.String("batch", summary.BatchID),
		zap.Int("successful", summary.SuccessfulFiles),
		zap.Int("failed", len(summary.FailedFiles)),
		zap.Int("rows", summary.TotalRows))
	return batch, nil
}

// skipDuplicate rejects a second file with a name already used in the batch.
// Its content is not read; the first file keeps the name.
func (in *Ingester) skipDuplicate(job FileJob) (*FileResult, Action) {
	result := NewFileResult(job)
	result.AddWarning("already loaded; skipping")
	record := NewErrorRecord(fmt.Errorf("%s: %w", job.File, session.ErrAlreadyLoaded), ErrorCategoryWarning).WithFile(job.File)
	result.AddError(record)
	action := in.errors.HandleError(record)
	result.Complete(false)
	if action == ActionContinue {
		action = ActionSkipFile
	}
	return result, action
}

// ingestFile handles a single file. input is nil when the file was skipped.
func (in *Ingester) ingestFile(job FileJob, file model.SourceFile) (*FileResult, *harmonize.Input, Action) {
	result := NewFileResult(job)
	logger := in.logger.With(zap.String("job", job.ID), zap.String("file", job.File))

	fail := func(err error) Action {
		record := NewErrorRecord(err, in.errors.CategorizeError(err)).WithFile(job.File)
		result.AddError(record)
		return in.errors.HandleError(record)
	}

	table, ok := in.cachedTable(job.File)
	if ok {
		result.Cached = true
		result.AddWarning("already loaded; reusing the stored table")
	} else {
		var notices []extractor.Notice
		var err error
		table, notices, err = in.extractor.Extract(file)
		for _, n := range notices {
			result.AddWarning(n.Message)
		}
		if err != nil {
			action := fail(err)
			result.Complete(false)
			return result, nil, action
		}
		if table.IsEmpty() {
			action := fail(fmt.Errorf("%s: %w", job.File, session.ErrNoTabularData))
			result.Complete(false)
			if action == ActionContinue {
				action = ActionSkipFile
			}
			return result, nil, action
		}
		if in.workspace != nil {
			_ = in.workspace.Add(job.File, table) // duplicates were served from the cache above
		}
	}

	normalized, ops, err := in.cleaner.Normalize(job.File, table, model.NormalizeDisplay)
	if err != nil {
		action := fail(fmt.Errorf("normalize columns: %w", err))
		result.Complete(false)
		return result, nil, action
	}
	result.CleaningOperations = len(ops)
	result.Rows = normalized.Table.NumRows()
	result.Columns = normalized.Table.Columns()

	candidate := in.resolver.Resolve(normalized.Table)
	result.Candidate = candidate
	if !candidate.HasValue() {
		record := NewErrorRecord(errMissingIdentifier, ErrorCategoryIdentifier).
			WithFile(job.File).
			WithColumn(candidate.ColumnName())
		result.AddError(record)
		in.errors.HandleError(record)
	} else if !candidate.Verified {
		result.AddWarning(fmt.Sprintf("identifier %q does not match the expected pattern", candidate.ValueString()))
	}

	logger.Debug("Ingested file",
		zap.Int("rows", result.Rows),
		zap.String("candidate_column", candidate.ColumnName()),
		zap.String("candidate", candidate.ValueString()),
		zap.Bool("verified", candidate.Verified))

	result.Complete(true)
	return result, &harmonize.Input{
		Filename:  job.File,
		Table:     normalized,
		Candidate: candidate,
	}, ActionContinue
}

func (in *Ingester) cachedTable(name string) (*model.Table, bool) {
	if in.workspace == nil {
		return nil, false
	}
	return in.workspace.Table(name)
}
