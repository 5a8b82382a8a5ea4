package extractor

import (
	"bytes"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/David-Botos/datahub/pkg/harmonize"
	"github.com/David-Botos/datahub/pkg/model"
)

func buildPDF(t *testing.T, draw func(p *fpdf.Fpdf)) []byte {
	t.Helper()
	p := fpdf.New("P", "mm", "A4", "")
	p.AddPage()
	p.SetFont("Helvetica", "", 11)
	draw(p)
	var buf bytes.Buffer
	require.NoError(t, p.Output(&buf))
	return buf.Bytes()
}

func TestExtract_GeneratedPDFTextFallback(t *testing.T) {
	content := buildPDF(t, func(p *fpdf.Fpdf) {
		for _, line := range []string{"id,name", "ABCD1234EFGH5678,Rossi", "x,y,z"} {
			p.Cell(0, 6, line)
			p.Ln(6)
		}
	})

	doc, err := OpenPDF(content)
	require.NoError(t, err)
	lines, err := doc.Lines(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"id,name", "ABCD1234EFGH5678,Rossi", "x,y,z"}, lines)

	tbl, notices, err := New(nil).Extract(model.NewSourceFile("a.pdf", content))
	require.NoError(t, err)
	assert.Empty(t, notices)
	assert.Equal(t, []string{"id", "name"}, tbl.Columns())
	require.Equal(t, 1, tbl.NumRows())
	assert.Equal(t, "ABCD1234EFGH5678", cellText(t, tbl, 0, "id"))
	assert.Equal(t, "Rossi", cellText(t, tbl, 0, "name"))
}

func TestExtract_GeneratedPDFRuledTable(t *testing.T) {
	content := buildPDF(t, func(p *fpdf.Fpdf) {
		rows := [][]string{
			{"id", "nome", "importo"},
			{"ABCD1234EFGH5678", "Rossi", "100"},
			{"EFGH5678ABCD1234", "Bianchi", "250"},
		}
		for _, row := range rows {
			for _, v := range row {
				p.CellFormat(50, 8, v, "1", 0, "L", false, 0, "")
			}
			p.Ln(-1)
		}
	})

	tbl, notices, err := New(nil).Extract(model.NewSourceFile("tabella.pdf", content))
	require.NoError(t, err)
	assert.Empty(t, notices)
	assert.Equal(t, []string{"id", "importo", "nome"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, "ABCD1234EFGH5678", cellText(t, tbl, 0, "id"))
	assert.Equal(t, "Rossi", cellText(t, tbl, 0, "nome"))
	assert.Equal(t, "250", cellText(t, tbl, 1, "importo"))
}

func TestGroupLines_WidthlessFont(t *testing.T) {
	chars := func(x, y float64, s string) []pdf.Text {
		var out []pdf.Text
		for _, r := range s {
			out = append(out, pdf.Text{X: x, Y: y, FontSize: 10, S: string(r)})
		}
		return out
	}
	var texts []pdf.Text
	texts = append(texts, chars(200, 700, "nome")...) // drawn before its left neighbour
	texts = append(texts, chars(30, 700, "id")...)
	texts = append(texts, chars(30, 680, "ABCD")...)
	texts = append(texts, pdf.Text{X: 80, Y: 680, FontSize: 10, S: "\n"})
	texts = append(texts, chars(200, 680.5, "Rossi")...)

	lines := groupLines(texts)
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"id", "nome"}, segment(lines[0], cellGap))
	assert.Equal(t, []string{"ABCD", "Rossi"}, segment(lines[1], cellGap))
	assert.InDelta(t, 10.0, lines[0][0].W, 0.001)
}

func TestMergeRuns_CapsEstimatedWidth(t *testing.T) {
	runs := mergeRuns([]pdf.Text{
		{X: 0, FontSize: 10, S: "a"},
		{X: 0, FontSize: 10, S: "bcdefgh"},
		{X: 20, FontSize: 10, S: "z"},
	})
	require.Len(t, runs, 2)
	assert.Equal(t, "abcdefgh", runs[0].S)
	assert.InDelta(t, 20.0, runs[0].W, 0.001)
	assert.Equal(t, []string{"abcdefghz"}, segment(runs, cellGap))
}

func TestExtract_XLSXDateCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"codice_fiscale", "data", "importo"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{
		"ABCD1234EFGH5678", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 100,
	}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{
		"ABCD1234EFGH5678", time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC), 7,
	}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, _, err := New(nil).Extract(model.NewSourceFile("movimenti.xlsx", buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.NumRows())

	march, _ := tbl.Cell(0, "data")
	assert.Equal(t, model.KindDate, march.Kind)
	assert.Equal(t, "2024-03-15", march.String())
	assert.True(t, march.Time.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))

	april, _ := tbl.Cell(1, "data")
	assert.Equal(t, model.KindDate, april.Kind)
	assert.Equal(t, "2024-04-02 09:30:00", april.String())

	amount, _ := tbl.Cell(0, "importo")
	assert.Equal(t, model.KindNumeric, amount.Kind)

	kept, err := harmonize.FilterMonth(tbl, 3)
	require.NoError(t, err)
	require.Equal(t, 1, kept.NumRows())
	assert.Equal(t, "100", cellText(t, kept, 0, "importo"))

	all, err := harmonize.FilterMonth(tbl, 0)
	require.NoError(t, err)
	first, _ := all.Cell(0, "data")
	assert.Equal(t, model.KindDate, first.Kind)
}

func TestIsDateFormatCode(t *testing.T) {
	assert.True(t, isDateFormatCode("dd/mm/yyyy"))
	assert.True(t, isDateFormatCode("[$-410]d mmmm yyyy"))
	assert.False(t, isDateFormatCode("hh:mm:ss"))
	assert.False(t, isDateFormatCode(`0.00 "days"`))
	assert.False(t, isDateFormatCode(`#,##0\d`))
	assert.False(t, isDateFormatCode("[Red]0.00"))
}

func TestParseXLSDate(t *testing.T) {
	got, ok := parseXLSDate("2024-03-15T00:00:00Z")
	require.True(t, ok)
	assert.Equal(t, time.March, got.Month())

	_, ok = parseXLSDate("2024.03")
	assert.False(t, ok)
}
