// pkg/extractor/delimited.go
package extractor

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// extractDelimited reads comma separated text. The first record is the
// header; records whose width differs from the header are dropped.
func (e *Extractor) extractDelimited(content []byte) (*model.Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return model.Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = headerNames(header)

	var rows [][]string
	dropped := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		if len(record) != len(header) {
			dropped++
			continue
		}
		rows = append(rows, record)
	}

	if dropped > 0 {
		e.logger.Debug("Dropped records with mismatched field count",
			zap.Int("dropped", dropped),
			zap.Int("header_fields", len(header)))
	}
	return e.converter.BuildTable(header, rows)
}

// isBlankRecord reports whether every field is whitespace
func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// headerNames makes spreadsheet-style headers unique: blank names become
// "Unnamed: <i>" and repeats get a ".<n>" suffix
func headerNames(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for used[candidate] {
			counts[name]++
			candidate = name + "." + strconv.Itoa(counts[name])
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}
