// pkg/extractor/pdfreader.go
package extractor

import (
	"bytes"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	// Horizontal gap, in multiples of the font size, that separates words
	wordGap = 0.15
	// Horizontal gap, in multiples of the font size, that separates table cells
	cellGap = 1.5
	// Minimum rows (header included) and columns for a block to count as a table
	minTableRows    = 2
	minTableColumns = 2
	// Baseline distance, in multiples of the font size, still read as one line
	lineTolerance = 0.3
	// Average glyph advance, in multiples of the font size, for fonts without widths
	charWidth = 0.5
)

// glyph is one positioned text run on a page
type glyph struct {
	X, W, Size float64
	S          string
}

// OpenPDF is the default PDFOpener, backed by github.com/ledongthuc/pdf
func OpenPDF(content []byte) (PageSource, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	return &layoutSource{reader: r, cache: make(map[int][][]glyph)}, nil
}

// layoutSource detects tables from the horizontal layout of text runs
type layoutSource struct {
	reader *pdf.Reader
	cache  map[int][][]glyph
}

func (s *layoutSource) NumPages() int {
	return s.reader.NumPage()
}

func (s *layoutSource) Table(page int) ([][]string, error) {
	lines, err := s.rows(page)
	if err != nil {
		return nil, err
	}
	return detectTable(lines), nil
}

func (s *layoutSource) Lines(page int) ([]string, error) {
	lines, err := s.rows(page)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.Join(segment(l, cellGap), " ")
	}
	return out, nil
}

// rows returns the page's text runs grouped by line, top to bottom, each line sorted by X
func (s *layoutSource) rows(page int) ([][]glyph, error) {
	if cached, ok := s.cache[page]; ok {
		return cached, nil
	}

	p := s.reader.Page(page)
	if p.V.IsNull() {
		s.cache[page] = nil
		return nil, nil
	}
	lines := groupLines(p.Content().Text)
	s.cache[page] = lines
	return lines, nil
}

// groupLines buckets positioned characters into lines by baseline and
// merges them into runs
func groupLines(texts []pdf.Text) [][]glyph {
	type line struct {
		y     float64
		size  float64
		texts []pdf.Text
	}
	var buckets []*line
	for _, t := range texts {
		if strings.Trim(t.S, "\r\n") == "" {
			continue
		}
		var target *line
		for _, b := range buckets {
			if math.Abs(b.y-t.Y) <= lineTolerance*max(b.size, t.FontSize, 1) {
				target = b
				break
			}
		}
		if target == nil {
			target = &line{y: t.Y, size: t.FontSize}
			buckets = append(buckets, target)
		}
		target.texts = append(target.texts, t)
	}

	// PDF y grows upwards
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].y > buckets[j].y })

	lines := make([][]glyph, 0, len(buckets))
	for _, b := range buckets {
		sort.SliceStable(b.texts, func(i, j int) bool { return b.texts[i].X < b.texts[j].X })
		lines = append(lines, mergeRuns(b.texts))
	}
	return lines
}

// mergeRuns joins characters into runs. Fonts without a widths table report
// W == 0 and leave every character of one show-text operation at the same X;
// those characters form one run whose width is estimated from its length,
// capped by where the next run starts.
func mergeRuns(texts []pdf.Text) []glyph {
	var runs []glyph
	for _, t := range texts {
		if n := len(runs); n > 0 && t.W == 0 && runs[n-1].W == 0 && runs[n-1].X == t.X {
			runs[n-1].S += t.S
			continue
		}
		runs = append(runs, glyph{X: t.X, W: t.W, Size: t.FontSize, S: t.S})
	}
	for i := range runs {
		if runs[i].W != 0 {
			continue
		}
		w := float64(utf8.RuneCountInString(runs[i].S)) * runs[i].Size * charWidth
		if i+1 < len(runs) {
			w = min(w, runs[i+1].X-runs[i].X)
		}
		runs[i].W = w
	}
	return runs
}

// segment splits a line wherever the gap between consecutive runs exceeds
// gap times the font size. Inside a segment, runs separated by more than a
// word gap are joined with a space.
func segment(line []glyph, gap float64) []string {
	if len(line) == 0 {
		return nil
	}
	var out []string
	var cur strings.Builder
	for i, g := range line {
		if i > 0 {
			prev := line[i-1]
			space := g.X - (prev.X + prev.W)
			size := max(prev.Size, g.Size, 1)
			switch {
			case space > gap*size:
				out = append(out, strings.TrimSpace(cur.String()))
				cur.Reset()
			case space > wordGap*size:
				cur.WriteByte(' ')
			}
		}
		cur.WriteString(g.S)
	}
	return append(out, strings.TrimSpace(cur.String()))
}

// detectTable returns the longest run of consecutive lines that split into
// the same number (at least minTableColumns) of cells
func detectTable(lines [][]glyph) [][]string {
	var best, run [][]string
	for _, l := range lines {
		cells := segment(l, cellGap)
		if len(cells) >= minTableColumns && (len(run) == 0 || len(cells) == len(run[0])) {
			run = append(run, cells)
		} else {
			run = nil
			if len(cells) >= minTableColumns {
				run = [][]string{cells}
			}
		}
		if len(run) > len(best) {
			best = run
		}
	}
	if len(best) < minTableRows {
		return nil
	}
	return best
}
