// pkg/report/csv.go
package report

import (
	"bytes"
	"encoding/csv"

	"github.com/David-Botos/datahub/pkg/model"
)

// renderCSV writes a header row then one row per record; absent cells are empty fields
func renderCSV(records *model.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(records.Columns()); err != nil {
		return nil, err
	}
	for i := 0; i < records.NumRows(); i++ {
		row := records.Row(i)
		fields := make([]string, len(row))
		for j, c := range row {
			fields[j] = c.String()
		}
		if err := w.Write(fields); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
