// pkg/report/pdf.go
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/David-Botos/datahub/pkg/model"
)

const emptyReport = "Nessun dato disponibile."

// Layout is the text content of a PDF report
type Layout struct {
	Title   string
	Month   string   // "" when no month was selected
	Lines   []string // one per shown record
	Omitted int      // records beyond the row cap
	Notice  string   // set when Omitted > 0 or there are no records
}

// Layout composes the PDF text for records. Each record becomes
// "column: value" pairs joined by " | ", skipping absent cells, with each
// value cut to the configured width.
func (r *Renderer) Layout(records *model.Table, canonicalID string, month int) Layout {
	l := Layout{Title: "Report mensile per CF: " + canonicalID}
	if month > 0 {
		l.Month = "Mese selezionato: " + strconv.Itoa(month)
	}

	if records.NumRows() == 0 {
		l.Notice = emptyReport
		return l
	}

	columns := records.Columns()
	shown := min(records.NumRows(), r.opts.RowCap)
	l.Lines = make([]string, 0, shown)
	for i := 0; i < shown; i++ {
		var pairs []string
		for j, c := range records.Row(i) {
			if c.IsAbsent() {
				continue
			}
			pairs = append(pairs, columns[j]+": "+truncate(c.String(), r.opts.ValueWidth))
		}
		l.Lines = append(l.Lines, strings.Join(pairs, " | "))
	}

	if l.Omitted = records.NumRows() - shown; l.Omitted > 0 {
		l.Notice = fmt.Sprintf("Altre %d righe non mostrate (limite %d).", l.Omitted, r.opts.RowCap)
	}
	return l
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}

func renderPDF(l Layout) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 14)
	doc.MultiCell(0, 8, tr(l.Title), "", "L", false)
	if l.Month != "" {
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 6, tr(l.Month), "", "L", false)
	}
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 8)
	for _, line := range l.Lines {
		doc.MultiCell(0, 4.5, tr(line), "", "L", false)
	}
	if l.Notice != "" {
		doc.Ln(2)
		doc.SetFont("Helvetica", "I", 9)
		doc.MultiCell(0, 5, tr(l.Notice), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
