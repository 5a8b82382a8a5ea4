// pkg/report/xlsx.go
package report

import (
	"github.com/xuri/excelize/v2"

	"github.com/David-Botos/datahub/pkg/model"
)

// SheetName is the only worksheet of an xlsx report
const SheetName = "Report"

// renderXLSX writes the records to a single worksheet. Numbers stay
// numeric, dates are written as YYYY-MM-DD and absent cells are left empty.
func renderXLSX(records *model.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}

	columns := records.Columns()
	for j, name := range columns {
		if err := setCell(f, j+1, 1, name); err != nil {
			return nil, err
		}
	}

	for i := 0; i < records.NumRows(); i++ {
		for j, c := range records.Row(i) {
			var value interface{}
			switch c.Kind {
			case model.KindAbsent:
				continue
			case model.KindNumeric:
				value = c.Number
			case model.KindDate:
				value = c.Time.Format(model.DateLayout)
			default:
				value = c.Text
			}
			if err := setCell(f, j+1, i+2, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(SheetName, ref, value)
}
