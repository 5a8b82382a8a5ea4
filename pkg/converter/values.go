// pkg/converter/values.go
package converter

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/David-Botos/datahub/pkg/model"
)

var numberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseCell types a single raw text value. Only absence is decided here;
// numeric promotion is a column-level decision (see InferColumns).
func (c *TypeConverter) ParseCell(raw string) model.Cell {
	if c.config.TrimSpace {
		raw = strings.TrimSpace(raw)
	}
	if isNull(raw) && c.config.EmptyStringAsAbsent {
		return model.Absent()
	}
	return model.TextCell(raw)
}

// ConvertValue types a value produced by a database driver or spreadsheet reader
func (c *TypeConverter) ConvertValue(value interface{}) model.Cell {
	switch v := value.(type) {
	case nil:
		return model.Absent()
	case string:
		if text, ok := compactJSON(v); ok {
			return model.TextCell(text)
		}
		return c.ParseCell(v)
	case []byte:
		if text, ok := compactJSON(string(v)); ok {
			return model.TextCell(text)
		}
		return c.ParseCell(string(v))
	case int:
		return model.NumberCell(float64(v), strconv.Itoa(v))
	case int32:
		return model.NumberCell(float64(v), strconv.FormatInt(int64(v), 10))
	case int64:
		return model.NumberCell(float64(v), strconv.FormatInt(v, 10))
	case float32:
		return model.NumberCell(float64(v), strconv.FormatFloat(float64(v), 'f', -1, 32))
	case float64:
		return model.NumberCell(v, strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		return model.TextCell(strconv.FormatBool(v))
	case time.Time:
		return model.DateCell(v, "")
	default:
		if text, ok := c.compositeText(v); ok {
			return model.TextCell(text)
		}
		return model.TextCell(fmt.Sprintf("%v", v))
	}
}

// isNull determines if a raw string should be treated as absent
func isNull(value string) bool {
	return strings.TrimSpace(value) == ""
}

// ParseNumber parses a plain decimal number. Locale formats ("1.024,5") and
// non-finite spellings are rejected so they stay text.
func ParseNumber(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	if !numberPattern.MatchString(cleaned) {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseDate parses the date spellings found in uploaded files.
// Slash dates are tried month-first, then day-first.
func ParseDate(s string) (time.Time, bool) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, false
	}

	if format := DetectTimeFormat(cleaned); format != "" {
		if t, err := time.Parse(format, cleaned); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToDate converts a cell to a date cell; cells that cannot be read as a
// date become absent
func ToDate(cell model.Cell) model.Cell {
	switch cell.Kind {
	case model.KindDate:
		return cell
	case model.KindText, model.KindNumeric:
		if t, ok := ParseDate(cell.String()); ok {
			return model.DateCell(t, cell.String())
		}
	}
	return model.Absent()
}
