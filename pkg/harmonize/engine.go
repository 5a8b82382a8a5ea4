// pkg/harmonize/engine.go
package harmonize

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/merge"
	"github.com/David-Botos/datahub/pkg/model"
)

// Engine decides the canonical identifier of a session and assembles the
// records that belong to it
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new harmonization engine
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Harmonize resolves the canonical identifier, flags files that disagree
// with it and concatenates every row that mentions it. A non-empty manualID
// always wins over detected identifiers.
func (e *Engine) Harmonize(inputs []Input, manualID string) Result {
	result := Result{
		DistinctIDs: DistinctIdentifiers(inputs),
		Mismatches:  []string{},
		Records:     model.Empty(),
		RowsPerFile: make(map[string]int, len(inputs)),
	}

	canonical, ok := ResolveCanonical(result.DistinctIDs, manualID)
	if !ok {
		result.Outcome = OutcomeUnresolved
		e.logger.Warn("Identifier not uniquely determined",
			zap.Strings("candidates", result.DistinctIDs),
			zap.Int("files", len(inputs)))
		return result
	}
	result.CanonicalID = &canonical

	result.Mismatches = Mismatches(inputs, canonical)
	if len(result.Mismatches) > 0 {
		e.logger.Warn("Identifier missing or different in some files",
			zap.String("canonical", canonical),
			zap.Strings("files", result.Mismatches))
	}

	filtered := make([]*model.Table, 0, len(inputs))
	for _, in := range inputs {
		kept := FilterRows(in.Table.Table, in.Candidate, canonical)
		result.RowsPerFile[in.Filename] = kept.NumRows()
		filtered = append(filtered, kept)

		e.logger.Debug("Filtered file rows",
			zap.String("file", in.Filename),
			zap.String("column", in.Candidate.ColumnName()),
			zap.Int("rows", in.Table.Table.NumRows()),
			zap.Int("kept", kept.NumRows()))
	}

	result.Records = merge.Unify(filtered)
	if result.Records.IsEmpty() {
		result.Outcome = OutcomeNoMatchingRecords
		e.logger.Info("No records match identifier", zap.String("canonical", canonical))
		return result
	}

	result.Outcome = OutcomeHarmonized
	e.logger.Info("Harmonized records",
		zap.String("canonical", canonical),
		zap.Int("files", len(inputs)),
		zap.Int("rows", result.Records.NumRows()),
		zap.Int("columns", result.Records.NumColumns()))
	return result
}

// DistinctIdentifiers collects the candidate values, dropping missing or
// empty ones and case-insensitive duplicates; first spelling wins
func DistinctIdentifiers(inputs []Input) []string {
	seen := make(map[string]struct{})
	ids := []string{}
	for _, in := range inputs {
		v := in.Candidate.ValueString()
		if v == "" {
			continue
		}
		key := strings.ToUpper(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ids = append(ids, v)
	}
	return ids
}

// ResolveCanonical picks the canonical identifier: the manual one when
// given, else the only distinct candidate. ok is false otherwise.
func ResolveCanonical(distinct []string, manualID string) (string, bool) {
	if manual := strings.ToUpper(strings.TrimSpace(manualID)); manual != "" {
		return manual, true
	}
	if len(distinct) == 1 {
		return distinct[0], true
	}
	return "", false
}

// Mismatches returns, sorted, the files whose candidate is missing or
// differs from canonical ignoring case
func Mismatches(inputs []Input, canonical string) []string {
	set := make(map[string]struct{})
	for _, in := range inputs {
		if in.Candidate.Value == nil || !strings.EqualFold(*in.Candidate.Value, canonical) {
			set[in.Filename] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// FilterRows keeps the rows that contain canonical, ignoring case. When the
// candidate names a column the table has, only that column is searched;
// otherwise any cell may match.
func FilterRows(table *model.Table, candidate model.IdentifierCandidate, canonical string) *model.Table {
	needle := strings.ToLower(canonical)
	column := candidate.ColumnName()

	if column != "" && table.HasColumn(column) {
		return table.Filter(func(row int) bool {
			cell, _ := table.Cell(row, column)
			return !cell.IsAbsent() && strings.Contains(strings.ToLower(cell.String()), needle)
		})
	}

	return table.Filter(func(row int) bool {
		for _, cell := range table.Row(row) {
			if !cell.IsAbsent() && strings.Contains(strings.ToLower(cell.String()), needle) {
				return true
			}
		}
		return false
	})
}
