// pkg/harmonize/temporal.go
package harmonize

import (
	"fmt"

	"github.com/David-Botos/datahub/pkg/converter"
	"github.com/David-Botos/datahub/pkg/model"
)

// DateColumn is the canonical name of the column used for month refinement
const DateColumn = "data"

// HasDateColumn reports whether records can be refined by month
func HasDateColumn(records *model.Table) bool {
	return records.HasColumn(DateColumn)
}

// FilterMonth types the date column and keeps the rows dated in month (1-12).
// Month 0 keeps every row. Values that are not dates become absent and never
// match a month. Records without a date column are returned as a copy.
func FilterMonth(records *model.Table, month int) (*model.Table, error) {
	if month < 0 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}

	out := records.Clone()
	if !HasDateColumn(out) {
		return out, nil
	}

	for r := 0; r < out.NumRows(); r++ {
		cell, _ := out.Cell(r, DateColumn)
		if err := out.SetCell(r, DateColumn, converter.ToDate(cell)); err != nil {
			return nil, err
		}
	}
	if month == 0 {
		return out, nil
	}

	return out.Filter(func(row int) bool {
		cell, _ := out.Cell(row, DateColumn)
		return cell.Kind == model.KindDate && int(cell.Time.Month()) == month
	}), nil
}
