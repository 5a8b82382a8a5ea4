package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/datahub/pkg/extractor"
	"github.com/David-Botos/datahub/pkg/harmonize"
	"github.com/David-Botos/datahub/pkg/merge"
	"github.com/David-Botos/datahub/pkg/model"
	"github.com/David-Botos/datahub/pkg/session"
)

func csvFile(name, content string) model.SourceFile {
	return model.NewSourceFile(name, []byte(content))
}

func TestIngest_IsolatesFailures(t *testing.T) {
	files := []model.SourceFile{
		csvFile("a.csv", "Codice Fiscale,name\nABCD1234EFGH5678,Rossi\n"),
		csvFile("broken.xlsx", "not a workbook"),
		csvFile("notes.docx", "hello"),
		csvFile("b.csv", "id,amount\nabcd1234efgh5678,100\n"),
	}

	batch, err := NewIngester(nil, nil, nil, nil).Ingest(files, 0)
	require.NoError(t, err)
	require.Len(t, batch.Results, 4)

	assert.True(t, batch.Results[0].Success)
	assert.False(t, batch.Results[1].Success)
	assert.Equal(t, ErrorCategoryExtraction, batch.Results[1].Errors[0].Category)
	assert.False(t, batch.Results[2].Success)
	assert.Contains(t, batch.Results[2].Warnings, "unsupported format")
	assert.True(t, batch.Results[3].Success)

	require.Len(t, batch.Inputs, 2)
	assert.Equal(t, "a.csv", batch.Inputs[0].Filename)
	assert.Equal(t, "ABCD1234EFGH5678", batch.Inputs[0].Candidate.ValueString())
	assert.Equal(t, "Codice Fiscale", batch.Inputs[0].Candidate.ColumnName())
	assert.Equal(t, model.NormalizeDisplay, batch.Inputs[0].Table.Mode)

	s := batch.Summary
	assert.Equal(t, 4, s.TotalFiles)
	assert.Equal(t, 2, s.SuccessfulFiles)
	assert.Equal(t, []string{"broken.xlsx", "notes.docx"}, s.FailedFiles)
	assert.Equal(t, 2, s.TotalRows)
	assert.InDelta(t, 50.0, s.SuccessRate(), 0.001)
	assert.NotEmpty(t, batch.Results[0].JobID)
	assert.NotEqual(t, batch.Results[0].JobID, batch.Results[3].JobID)
}

func TestIngest_FeedsHarmonization(t *testing.T) {
	files := []model.SourceFile{
		csvFile("a.csv", "id,name,data\nABCD1234EFGH5678,Rossi,2024-03-01\n"),
		csvFile("b.csv", "id,amount\nABCD1234EFGH5678,100\n"),
	}
	batch, err := NewIngester(nil, nil, nil, nil).Ingest(files, 0)
	require.NoError(t, err)

	res := harmonize.NewEngine(nil).Harmonize(batch.Inputs, "")
	require.Equal(t, harmonize.OutcomeHarmonized, res.Outcome)
	assert.Equal(t, "ABCD1234EFGH5678", res.Canonical())
	assert.Equal(t, []string{"amount", "data", "id", "name"}, res.Records.Columns())
	assert.Equal(t, 2, res.Records.NumRows())
	assert.Empty(t, res.Mismatches)
}

func TestIngest_MaxFiles(t *testing.T) {
	files := []model.SourceFile{
		csvFile("a.csv", "cf\nABCD1234EFGH5678\n"),
		csvFile("b.csv", "cf\nABCD1234EFGH5678\n"),
		csvFile("c.csv", "cf\nABCD1234EFGH5678\n"),
	}
	batch, err := NewIngester(nil, nil, nil, nil).Ingest(files, 2)
	require.NoError(t, err)
	assert.Len(t, batch.Results, 2)
	assert.Equal(t, []string{"c.csv"}, batch.Summary.IgnoredFiles)
}

func TestIngest_MissingIdentifierIsRecorded(t *testing.T) {
	batch, err := NewIngester(nil, nil, nil, nil).Ingest([]model.SourceFile{
		csvFile("x.csv", "name,city\nRossi,Roma\n"),
	}, 0)
	require.NoError(t, err)

	r := batch.Results[0]
	assert.True(t, r.Success)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, ErrorCategoryIdentifier, r.Errors[0].Category)
	require.Len(t, batch.Inputs, 1)
	assert.False(t, batch.Inputs[0].Candidate.HasValue())
}

func TestIngest_ReusesWorkspaceTables(t *testing.T) {
	ws := session.NewWorkspace(nil)
	in := NewIngester(nil, nil, nil, ws)

	first := csvFile("a.csv", "cf\nABCD1234EFGH5678\n")
	_, err := in.Ingest([]model.SourceFile{first}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, ws.Names())

	// Same name, different content: the stored table wins
	second := csvFile("a.csv", "cf\nZZZZ1234EFGH5678\n")
	batch, err := in.Ingest([]model.SourceFile{second}, 0)
	require.NoError(t, err)
	assert.True(t, batch.Results[0].Cached)
	assert.Equal(t, "ABCD1234EFGH5678", batch.Inputs[0].Candidate.ValueString())
	assert.Equal(t, 1, ws.Len())
}

func TestIngest_SkipsRepeatedNameInBatch(t *testing.T) {
	ws := session.NewWorkspace(nil)
	files := []model.SourceFile{
		csvFile("a.csv", "cf,amount\nABCD1234EFGH5678,100\n"),
		csvFile("a.csv", "cf,amount\nABCD1234EFGH5678,999\n"),
	}
	batch, err := NewIngester(nil, nil, nil, ws).Ingest(files, 0)
	require.NoError(t, err)

	require.Len(t, batch.Results, 2)
	assert.True(t, batch.Results[0].Success)
	second := batch.Results[1]
	assert.False(t, second.Success)
	assert.False(t, second.Cached)
	assert.Contains(t, second.Warnings, "already loaded; skipping")
	require.Len(t, second.Errors, 1)
	assert.Equal(t, ErrorCategoryWarning, second.Errors[0].Category)
	require.Len(t, batch.Inputs, 1)

	res := harmonize.NewEngine(nil).Harmonize(batch.Inputs, "")
	require.Equal(t, harmonize.OutcomeHarmonized, res.Outcome)
	require.Equal(t, 1, res.Records.NumRows())
	amount, _ := res.Records.Cell(0, "amount")
	assert.Equal(t, "100", amount.String())
	assert.Equal(t, 1, ws.Len())
}

func TestIngest_EmptyTableIsSkipped(t *testing.T) {
	ws := session.NewWorkspace(nil)
	batch, err := NewIngester(nil, nil, nil, ws).Ingest([]model.SourceFile{
		csvFile("header.csv", "cf,name\n"),
	}, 0)
	require.NoError(t, err)
	assert.False(t, batch.Results[0].Success)
	assert.Equal(t, ErrorCategoryWarning, batch.Results[0].Errors[0].Category)
	assert.Empty(t, batch.Inputs)
	assert.Zero(t, ws.Len())
}

func TestIngest_AbortsOnCriticalError(t *testing.T) {
	ext := extractor.New(nil, extractor.WithPDFOpener(func([]byte) (extractor.PageSource, error) {
		return nil, context.Canceled
	}))
	files := []model.SourceFile{
		csvFile("scan.pdf", ""),
		csvFile("a.csv", "cf\nABCD1234EFGH5678\n"),
	}

	batch, err := NewIngester(nil, ext, nil, nil).Ingest(files, 0)
	require.Error(t, err)
	assert.Len(t, batch.Results, 1)
	assert.Equal(t, ErrorCategoryCritical, batch.Results[0].Errors[0].Category)
}

func TestIngest_AbortsWhenThresholdExceeded(t *testing.T) {
	in := NewIngester(nil, nil, nil, nil)
	in.Errors().SetThreshold(ErrorCategoryExtraction, 1)

	var files []model.SourceFile
	for i := 0; i < 4; i++ {
		files = append(files, csvFile(fmt.Sprintf("bad%d.xlsx", i), "junk"))
	}
	batch, err := in.Ingest(files, 0)
	assert.ErrorIs(t, err, ErrThresholdExceeded)
	assert.Len(t, batch.Results, 2)
}

func TestErrorHandler_CategorizeError(t *testing.T) {
	eh := NewErrorHandler(nil)
	extractErr := &extractor.ExtractionError{Filename: "a.pdf", Format: model.FormatPDF, Err: errors.New("bad xref")}

	cases := []struct {
		err  error
		want ErrorCategory
	}{
		{nil, ErrorCategoryNone},
		{fmt.Errorf("wrapped: %w", extractErr), ErrorCategoryExtraction},
		{fmt.Errorf("merge: %w", merge.ErrNoCommonSchema), ErrorCategorySchema},
		{harmonize.ErrIdentifierUnresolved, ErrorCategoryIdentifier},
		{harmonize.ErrNoMatchingRecords, ErrorCategoryWarning},
		{session.ErrAlreadyLoaded, ErrorCategoryWarning},
		{fmt.Errorf("read: %w", context.DeadlineExceeded), ErrorCategoryCritical},
		{errors.New("something else"), ErrorCategoryExtraction},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, eh.CategorizeError(tc.err), "%v", tc.err)
	}
}

func TestErrorHandler_HandleError(t *testing.T) {
	eh := NewErrorHandler(nil)
	assert.Equal(t, ActionContinue, eh.HandleError(NewErrorRecord(errors.New("w"), ErrorCategoryWarning)))
	assert.Equal(t, ActionSkipFile, eh.HandleError(NewErrorRecord(errors.New("e"), ErrorCategoryExtraction).WithFile("a.csv")))
	assert.Equal(t, ActionSkipFile, eh.HandleError(NewErrorRecord(errors.New("s"), ErrorCategorySchema).WithFile("a.csv")))
	assert.False(t, eh.IsErrorThresholdExceeded())
	assert.Equal(t, ActionAbort, eh.HandleError(NewErrorRecord(errors.New("c"), ErrorCategoryCritical)))
	assert.True(t, eh.IsErrorThresholdExceeded())

	assert.Equal(t, map[string]int{"a.csv": 2}, eh.GetFileErrorCounts())
	summary := eh.GetErrorSummary()
	assert.Equal(t, 1, summary[ErrorCategoryExtraction])
	assert.Equal(t, 1, summary[ErrorCategoryCritical])
	assert.Len(t, eh.GetErrorSamples()[ErrorCategorySchema], 1)
}

func TestErrorRecord_String(t *testing.T) {
	r := NewErrorRecord(errors.New("boom"), ErrorCategorySchema).WithFile("a.csv").WithColumn("cf")
	assert.Equal(t, "[Schema] File: a.csv Column: cf Error: boom", r.String())
}
