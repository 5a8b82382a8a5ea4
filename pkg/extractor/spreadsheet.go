// pkg/extractor/spreadsheet.go
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/model"
)

var errNoWorksheet = errors.New("workbook has no worksheet")

// cellRef addresses a worksheet cell by zero-based row and column
type cellRef struct {
	row, col int
}

// extractXLSX reads the first worksheet of an Office Open XML workbook.
// Values are read unformatted; cells with a date number format become dates.
func (e *Extractor) extractXLSX(content []byte) (*model.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoWorksheet
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	use1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		use1904 = *props.Date1904
	}

	dateStyles := make(map[int]bool)
	dates := make(map[cellRef]time.Time)
	for r, row := range rows {
		for c, raw := range row {
			if raw == "" {
				continue
			}
			serial, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			styleID, err := f.GetCellStyle(sheet, name)
			if err != nil {
				continue
			}
			isDate, seen := dateStyles[styleID]
			if !seen {
				isDate = isDateStyle(f, styleID)
				dateStyles[styleID] = isDate
			}
			if !isDate {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, use1904)
			if err != nil {
				continue
			}
			t = t.Round(time.Second)
			dates[cellRef{r, c}] = t
			row[c] = formatSheetDate(t)
		}
	}
	return e.sheetTable(rows, dates)
}

// Built-in number formats that render dates (time-only formats excluded)
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

func isDateStyle(f *excelize.File, styleID int) bool {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	return builtinDateFormats[style.NumFmt]
}

// isDateFormatCode reports whether a custom number format shows a day or a
// year. Quoted literals, escaped characters and bracketed sections such as
// colors and locales are ignored.
func isDateFormatCode(code string) bool {
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			inBracket = ch != ']'
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\':
			i++
		case ch == 'y', ch == 'Y', ch == 'd', ch == 'D':
			return true
		}
	}
	return false
}

// formatSheetDate spells a sheet date the way ParseDate reads it back
func formatSheetDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(model.DateLayout)
	}
	return t.Format("2006-01-02 15:04:05")
}

// extractXLS reads the first worksheet of a legacy BIFF workbook. The reader
// renders custom-format dates as RFC3339 text, which is turned back into dates.
func (e *Extractor) extractXLS(content []byte) (*model.Table, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, errNoWorksheet
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errNoWorksheet
	}

	var rows [][]string
	dates := make(map[cellRef]time.Time)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		values := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			v := row.Col(c)
			if t, ok := parseXLSDate(v); ok {
				dates[cellRef{len(rows), c}] = t
				v = formatSheetDate(t)
			}
			values = append(values, v)
		}
		rows = append(rows, values)
	}
	return e.sheetTable(rows, dates)
}

func parseXLSDate(v string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, v)
	return t, err == nil
}

// sheetTable turns worksheet rows into a table. Readers trim trailing empty
// cells, so short rows are padded with absent cells and columns beyond the
// header get "Unnamed" names. Fully blank rows are skipped. Cells listed in
// dates, keyed by their position in rows, become date cells.
func (e *Extractor) sheetTable(rows [][]string, dates map[cellRef]time.Time) (*model.Table, error) {
	// Skip leading blank rows to find the header
	start := 0
	for start < len(rows) && isBlankRecord(rows[start]) {
		start++
	}
	if start == len(rows) {
		return model.Empty(), nil
	}

	width := 0
	for _, r := range rows[start:] {
		width = max(width, len(r))
	}
	header := make([]string, width)
	copy(header, rows[start])
	for i := len(rows[start]); i < width; i++ {
		header[i] = "Unnamed: " + strconv.Itoa(i)
	}
	header = headerNames(header)

	data := make([][]string, 0, len(rows)-start-1)
	sources := make([]int, 0, len(rows)-start-1)
	for i, r := range rows[start+1:] {
		if isBlankRecord(r) {
			continue
		}
		padded := make([]string, width)
		copy(padded, r)
		data = append(data, padded)
		sources = append(sources, start+1+i)
	}

	table, err := e.converter.BuildTable(header, data)
	if err != nil || len(dates) == 0 {
		return table, err
	}

	columns := table.Columns()
	converted := 0
	for i, src := range sources {
		for c, column := range columns {
			t, ok := dates[cellRef{src, c}]
			if !ok {
				continue
			}
			if err := table.SetCell(i, column, model.DateCell(t, data[i][c])); err != nil {
				return nil, err
			}
			converted++
		}
	}
	e.logger.Debug("Read spreadsheet date cells", zap.Int("cells", converted))
	return table, nil
}
