package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/David-Botos/datahub/pkg/model"
)

func cellText(t *testing.T, tbl *model.Table, row int, column string) string {
	t.Helper()
	c, ok := tbl.Cell(row, column)
	require.True(t, ok, "missing column %q", column)
	return c.String()
}

func TestExtract_CSV(t *testing.T) {
	content := "id,name,amount\n" +
		"X1,Rossi,10\n" +
		"\n" +
		"X2,,7.5\n" +
		"X3,Bianchi\n" // wrong width, dropped

	tbl, notices, err := New(nil).Extract(model.NewSourceFile("data.CSV", []byte(content)))
	require.NoError(t, err)
	assert.Empty(t, notices)
	assert.Equal(t, []string{"id", "name", "amount"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())

	name, _ := tbl.Cell(1, "name")
	assert.True(t, name.IsAbsent())

	amount, _ := tbl.Cell(1, "amount")
	assert.Equal(t, model.KindNumeric, amount.Kind)
	assert.Equal(t, 7.5, amount.Number)
}

func TestExtract_CSVHeaderOnly(t *testing.T) {
	tbl, _, err := New(nil).Extract(model.NewSourceFile("a.txt", []byte("\xEF\xBB\xBFid,name\n")))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, tbl.Columns())
	assert.True(t, tbl.IsEmpty())
}

func TestHeaderNames(t *testing.T) {
	got := headerNames([]string{"a", "", "a", "a", "a.1"})
	assert.Equal(t, []string{"a", "Unnamed: 1", "a.1", "a.2", "a.1.1"}, got)
}

func TestExtract_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"codice_fiscale", "data", "importo"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"RSSMRA80A01H501U", "2024-03-01", 100}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"RSSMRA80A01H501U", "2024-04-01"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, notices, err := New(nil).Extract(model.NewSourceFile("report.xlsx", buf.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, notices)
	assert.Equal(t, []string{"codice_fiscale", "data", "importo"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, "RSSMRA80A01H501U", cellText(t, tbl, 0, "codice_fiscale"))
	assert.Equal(t, "100", cellText(t, tbl, 0, "importo"))

	missing, _ := tbl.Cell(1, "importo")
	assert.True(t, missing.IsAbsent())
}

func TestExtract_CorruptWorkbook(t *testing.T) {
	_, _, err := New(nil).Extract(model.NewSourceFile("broken.xlsx", []byte("not a zip archive")))
	require.Error(t, err)

	var extractErr *ExtractionError
	require.True(t, errors.As(err, &extractErr))
	assert.Equal(t, "broken.xlsx", extractErr.Filename)
	assert.Equal(t, model.FormatXLSX, extractErr.Format)
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	tbl, notices, err := New(nil).Extract(model.NewSourceFile("notes.docx", []byte("whatever")))
	require.NoError(t, err)
	assert.True(t, tbl.IsEmpty())
	assert.Zero(t, tbl.NumColumns())
	require.Len(t, notices, 1)
	assert.Equal(t, "notes.docx: unsupported format", notices[0].String())
}

// fakePages serves canned page content
type fakePages struct {
	tables [][][]string
	lines  [][]string
}

func (f fakePages) NumPages() int { return len(f.lines) }

func (f fakePages) Table(page int) ([][]string, error) {
	if page-1 < len(f.tables) {
		return f.tables[page-1], nil
	}
	return nil, nil
}

func (f fakePages) Lines(page int) ([]string, error) { return f.lines[page-1], nil }

func pdfExtractor(pages fakePages) *Extractor {
	return New(nil, WithPDFOpener(func([]byte) (PageSource, error) { return pages, nil }))
}

func TestExtract_PDFTextFallback(t *testing.T) {
	pages := fakePages{lines: [][]string{{
		"id,name",
		"",
		"1,Rossi",
		"2,Bianchi,extra",
		"3, Verdi ",
	}}}

	tbl, notices, err := pdfExtractor(pages).Extract(model.NewSourceFile("scan.pdf", nil))
	require.NoError(t, err)
	assert.Empty(t, notices)
	assert.Equal(t, []string{"id", "name"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, "Rossi", cellText(t, tbl, 0, "name"))
	assert.Equal(t, "Verdi", cellText(t, tbl, 1, "name"))

	// PDF cells are not typed
	id, _ := tbl.Cell(0, "id")
	assert.Equal(t, model.KindText, id.Kind)
}

func TestExtract_PDFSemicolonFallback(t *testing.T) {
	pages := fakePages{lines: [][]string{{"cf;mese", "ABCDEF12G34H567I;3"}}}

	tbl, _, err := pdfExtractor(pages).Extract(model.NewSourceFile("x.pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"cf", "mese"}, tbl.Columns())
	assert.Equal(t, "ABCDEF12G34H567I", cellText(t, tbl, 0, "cf"))
}

func TestExtract_PDFDetectedTablesAreUnified(t *testing.T) {
	pages := fakePages{
		tables: [][][]string{
			{{"id", "name", "id"}, {"1", "Rossi", "ignored"}},
			nil,
		},
		lines: [][]string{nil, {"id,importo", "2,50"}},
	}

	tbl, _, err := pdfExtractor(pages).Extract(model.NewSourceFile("multi.pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "importo", "name"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, "1", cellText(t, tbl, 0, "id"))
	assert.Equal(t, "Rossi", cellText(t, tbl, 0, "name"))

	importo, _ := tbl.Cell(0, "importo")
	assert.True(t, importo.IsAbsent())
	assert.Equal(t, "50", cellText(t, tbl, 1, "importo"))
}

func TestExtract_PDFWithoutTable(t *testing.T) {
	pages := fakePages{lines: [][]string{{"Gentile cliente", "nessuna tabella qui"}}}

	tbl, notices, err := pdfExtractor(pages).Extract(model.NewSourceFile("letter.pdf", nil))
	require.NoError(t, err)
	assert.True(t, tbl.IsEmpty())
	require.Len(t, notices, 1)
	assert.Equal(t, "no table detected in PDF", notices[0].Message)
}

func TestExtract_PDFOpenFailure(t *testing.T) {
	e := New(nil, WithPDFOpener(func([]byte) (PageSource, error) {
		return nil, errors.New("malformed xref")
	}))
	_, _, err := e.Extract(model.NewSourceFile("bad.pdf", nil))

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Contains(t, err.Error(), "malformed xref")
}

func TestExtract_RecoversDecoderPanic(t *testing.T) {
	e := New(nil, WithPDFOpener(func([]byte) (PageSource, error) {
		panic("index out of range")
	}))
	_, _, err := e.Extract(model.NewSourceFile("boom.pdf", nil))

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Contains(t, err.Error(), "decoder panic")
}

func TestSegment(t *testing.T) {
	line := []glyph{
		{X: 0, W: 10, Size: 10, S: "Codice"},
		{X: 12, W: 10, Size: 10, S: "fiscale"}, // word gap
		{X: 60, W: 10, Size: 10, S: "Mese"},    // cell gap
		{X: 70, W: 5, Size: 10, S: "!"},        // touching
	}
	assert.Equal(t, []string{"Codice fiscale", "Mese!"}, segment(line, cellGap))
	assert.Nil(t, segment(nil, cellGap))
}

func TestDetectTable(t *testing.T) {
	row := func(cells ...string) []glyph {
		var out []glyph
		for i, c := range cells {
			out = append(out, glyph{X: float64(i * 100), W: 20, Size: 10, S: c})
		}
		return out
	}
	lines := [][]glyph{
		row("Estratto conto"),
		row("cf", "mese", "importo"),
		row("A", "1", "10"),
		row("B", "2", "20"),
		row("Totale", "30"),
	}

	got := detectTable(lines)
	assert.Equal(t, [][]string{{"cf", "mese", "importo"}, {"A", "1", "10"}, {"B", "2", "20"}}, got)

	assert.Nil(t, detectTable([][]glyph{row("a", "b")}))
}
