// pkg/model/cell.go
package model

import (
	"strconv"
	"time"
)

// Kind tags the value held by a Cell
type Kind int

const (
	// KindAbsent marks a structurally expected cell that a source did not provide.
	// It is the zero value so a zeroed Cell reads as absent.
	KindAbsent Kind = iota
	KindText
	KindNumeric
	KindDate
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// DateLayout is the canonical rendering of date cells
const DateLayout = "2006-01-02"

// Cell is a single table value: text, numeric, date or absent
type Cell struct {
	Kind   Kind
	Text   string    // Raw text as read from the source (empty for absent)
	Number float64   // Valid when Kind == KindNumeric
	Time   time.Time // Valid when Kind == KindDate
}

// Absent returns the explicit missing-value marker
func Absent() Cell {
	return Cell{Kind: KindAbsent}
}

// TextCell wraps a string. Empty text stays text, it is not absent.
func TextCell(s string) Cell {
	return Cell{Kind: KindText, Text: s}
}

// NumberCell wraps a number. raw keeps the source spelling when known.
func NumberCell(n float64, raw string) Cell {
	return Cell{Kind: KindNumeric, Number: n, Text: raw}
}

// DateCell wraps a date. raw keeps the source spelling when known.
func DateCell(t time.Time, raw string) Cell {
	return Cell{Kind: KindDate, Time: t, Text: raw}
}

// IsAbsent reports whether the cell is the absent marker
func (c Cell) IsAbsent() bool {
	return c.Kind == KindAbsent
}

// String renders the cell as text. Absent cells render as "".
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumeric:
		if c.Text != "" {
			return c.Text
		}
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindDate:
		if c.Text != "" {
			return c.Text
		}
		return c.Time.Format(DateLayout)
	default:
		return ""
	}
}
