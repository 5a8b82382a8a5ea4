// pkg/extractor/pdf.go
package extractor

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/merge"
	"github.com/David-Botos/datahub/pkg/model"
)

// PageSource gives page-level access to a PDF document. Pages are 1-based.
type PageSource interface {
	NumPages() int
	// Table returns the detected table rows of a page, or nil when none
	Table(page int) ([][]string, error)
	// Lines returns the page's text, one entry per visual line
	Lines(page int) ([]string, error)
}

// PDFOpener parses a PDF payload into a PageSource
type PDFOpener func(content []byte) (PageSource, error)

// extractPDF walks the pages in order. A page contributes its detected
// table, or else a table recovered from comma/semicolon separated text.
// found is false when no page contributed anything.
func (e *Extractor) extractPDF(name string, content []byte) (table *model.Table, found bool, err error) {
	doc, err := e.openPDF(content)
	if err != nil {
		return nil, false, fmt.Errorf("open pdf: %w", err)
	}

	var tables []*model.Table
	for page := 1; page <= doc.NumPages(); page++ {
		rows, err := doc.Table(page)
		if err != nil {
			return nil, false, fmt.Errorf("page %d: %w", page, err)
		}

		var header []string
		var data [][]string
		if len(rows) > 0 {
			header, data = dedupeColumns(rows[0], rows[1:])
		} else {
			lines, err := doc.Lines(page)
			if err != nil {
				return nil, false, fmt.Errorf("page %d: %w", page, err)
			}
			var ok bool
			header, data, ok = sniffDelimited(lines)
			if !ok {
				continue
			}
			header, data = dedupeColumns(header, data)
		}

		t, err := e.pdfCells.BuildTable(header, data)
		if err != nil {
			return nil, false, fmt.Errorf("page %d: %w", page, err)
		}
		e.logger.Debug("Recovered table from PDF page",
			zap.String("file", name),
			zap.Int("page", page),
			zap.Int("columns", t.NumColumns()),
			zap.Int("rows", t.NumRows()))
		tables = append(tables, t)
	}

	if len(tables) == 0 {
		e.logger.Warn("No table detected in PDF", zap.String("file", name))
		return model.Empty(), false, nil
	}
	return merge.Unify(tables), true, nil
}

// dedupeColumns keeps only the first occurrence of each header name,
// dropping the matching cells of every row. Rows narrower or wider than
// the header are padded or cut to its width.
func dedupeColumns(header []string, rows [][]string) ([]string, [][]string) {
	keep := make([]int, 0, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		keep = append(keep, i)
	}

	outHeader := make([]string, len(keep))
	for i, pos := range keep {
		outHeader[i] = header[pos]
	}

	outRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells := make([]string, len(keep))
		for i, pos := range keep {
			if pos < len(r) {
				cells[i] = r[pos]
			}
		}
		outRows = append(outRows, cells)
	}
	return outHeader, outRows
}

// sniffDelimited treats page text as CSV-like when its first non-blank line
// holds a comma or a semicolon (comma preferred). Data lines whose field
// count differs from the header are dropped; ok is false when nothing usable
// is left.
func sniffDelimited(lines []string) (header []string, data [][]string, ok bool) {
	var rows []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			rows = append(rows, l)
		}
	}
	if len(rows) < 2 {
		return nil, nil, false
	}

	var sep string
	switch {
	case strings.Contains(rows[0], ","):
		sep = ","
	case strings.Contains(rows[0], ";"):
		sep = ";"
	default:
		return nil, nil, false
	}

	header = splitTrim(rows[0], sep)
	for _, r := range rows[1:] {
		parts := splitTrim(r, sep)
		if len(parts) == len(header) {
			data = append(data, parts)
		}
	}
	if len(data) == 0 {
		return nil, nil, false
	}
	return header, data, true
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
