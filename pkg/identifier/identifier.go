// pkg/identifier/identifier.go

// Package identifier finds the subject identifier of a table. Matching is
// heuristic: any 16-character alphanumeric word is accepted, so unrelated
// codes of that shape are false positives.
package identifier

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/cleaner"
	"github.com/David-Botos/datahub/pkg/model"
)

// Length is the fixed length of a subject identifier
const Length = 16

var (
	tokenPattern = regexp.MustCompile(`^[A-Za-z0-9]{16}$`)
	textPattern  = regexp.MustCompile(`\b[A-Za-z0-9]{16}\b`)
)

// DefaultFragments are the column-name fragments that mark an identifier column
var DefaultFragments = []string{"codicefiscale", "codice_fiscale", "cf", "codicef"}

// IsIdentifier reports whether s, as a whole token, has the identifier format
func IsIdentifier(s string) bool {
	return tokenPattern.MatchString(s)
}

// FindIdentifier returns the first identifier-shaped word in free text
func FindIdentifier(text string) (string, bool) {
	m := textPattern.FindString(text)
	return m, m != ""
}

// Resolver proposes the identifier column and value of a table
type Resolver struct {
	fragments []string
	logger    *zap.Logger
}

// NewResolver creates a Resolver. An empty fragment list selects DefaultFragments.
func NewResolver(logger *zap.Logger, fragments []string) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fragments) == 0 {
		fragments = DefaultFragments
	}
	normalized := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = cleaner.NormalizeName(f, model.NormalizeMerge); f != "" {
			normalized = append(normalized, f)
		}
	}
	return &Resolver{fragments: normalized, logger: logger}
}

// Resolve returns the identifier candidate for a table, in decreasing confidence:
// a pattern-verified value in a named column, the first value of a named
// column, an identifier found in a column's concatenated text, or nothing.
func (r *Resolver) Resolve(table *model.Table) model.IdentifierCandidate {
	if column, ok := r.namedColumn(table); ok {
		values := nonAbsentValues(table, column)
		for _, v := range values {
			if IsIdentifier(v) {
				r.logger.Debug("Identifier found in named column",
					zap.String("column", column), zap.String("value", v))
				return candidate(column, &v, true)
			}
		}
		if len(values) > 0 {
			first := values[0]
			r.logger.Debug("Named identifier column holds no well-formed value",
				zap.String("column", column), zap.String("value", first))
			return candidate(column, &first, false)
		}
		return candidate(column, nil, false)
	}

	for _, column := range table.Columns() {
		if v, ok := FindIdentifier(columnText(table, column)); ok {
			r.logger.Debug("Identifier found in column text",
				zap.String("column", column), zap.String("value", v))
			return candidate(column, &v, true)
		}
	}
	return model.IdentifierCandidate{}
}

// namedColumn returns the first column whose normalized name contains a fragment
func (r *Resolver) namedColumn(table *model.Table) (string, bool) {
	for _, column := range table.Columns() {
		normalized := cleaner.NormalizeName(column, model.NormalizeMerge)
		for _, f := range r.fragments {
			if strings.Contains(normalized, f) {
				return column, true
			}
		}
	}
	return "", false
}

// nonAbsentValues returns the column's present values, trimmed and upper-cased, in row order
func nonAbsentValues(table *model.Table, column string) []string {
	values := make([]string, 0, table.NumRows())
	for i := 0; i < table.NumRows(); i++ {
		cell, _ := table.Cell(i, column)
		if cell.IsAbsent() {
			continue
		}
		values = append(values, strings.TrimSpace(strings.ToUpper(cell.String())))
	}
	return values
}

// columnText joins every value of the column with single spaces
func columnText(table *model.Table, column string) string {
	parts := make([]string, table.NumRows())
	for i := range parts {
		cell, _ := table.Cell(i, column)
		parts[i] = cell.String()
	}
	return strings.Join(parts, " ")
}

func candidate(column string, value *string, verified bool) model.IdentifierCandidate {
	col := column
	return model.IdentifierCandidate{
		SourceColumn: &col,
		Value:        value,
		Verified:     verified,
	}
}
