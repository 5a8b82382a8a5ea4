// pkg/merge/merge.go
package merge

import (
	"errors"
	"sort"

	"github.com/David-Botos/datahub/pkg/cleaner"
	"github.com/David-Botos/datahub/pkg/model"
)

// ErrNoCommonSchema is returned when the inputs share no normalized column
var ErrNoCommonSchema = errors.New("no common columns across inputs")

// UnionColumns returns the sorted set union of the tables' column names
func UnionColumns(tables []*model.Table) []string {
	set := make(map[string]struct{})
	for _, t := range tables {
		for _, c := range t.Columns() {
			set[c] = struct{}{}
		}
	}
	columns := make([]string, 0, len(set))
	for c := range set {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns
}

// Unify concatenates tables row-wise over the union of their columns.
// Cells a table does not provide are absent. Tables are taken in input
// order and keep their internal row order.
func Unify(tables []*model.Table) *model.Table {
	columns := UnionColumns(tables)
	out, _ := model.NewTable(columns) // union is duplicate free

	for _, t := range tables {
		positions := make([]int, len(columns))
		for i, name := range columns {
			pos, ok := t.ColumnIndex(name)
			if !ok {
				pos = -1
			}
			positions[i] = pos
		}

		for r := 0; r < t.NumRows(); r++ {
			row := t.Row(r)
			cells := make([]model.Cell, len(columns))
			for i, pos := range positions {
				if pos >= 0 {
					cells[i] = row[pos]
				} else {
					cells[i] = model.Absent()
				}
			}
			_ = out.AppendRow(cells) // width matches by construction
		}
	}
	return out
}

// CommonColumns returns the sorted merge-normalized column names shared by every table
func CommonColumns(tables []*model.Table) []string {
	if len(tables) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, t := range tables {
		seen := make(map[string]struct{})
		for _, c := range cleaner.NormalizeNames(t.Columns(), model.NormalizeMerge) {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			counts[c]++
		}
	}

	var common []string
	for c, n := range counts {
		if n == len(tables) {
			common = append(common, c)
		}
	}
	sort.Strings(common)
	return common
}

// Intersect merge-normalizes every table and concatenates them restricted
// to the columns they all share
func Intersect(c *cleaner.ColumnCleaner, tables []model.NormalizedTable) (*model.Table, error) {
	normalized := make([]*model.Table, 0, len(tables))
	for _, nt := range tables {
		out, _, err := c.Normalize(nt.Source, nt.Table, model.NormalizeMerge)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, out.Table)
	}

	common := CommonColumns(normalized)
	if len(common) == 0 {
		return nil, ErrNoCommonSchema
	}

	projected := make([]*model.Table, 0, len(normalized))
	for _, t := range normalized {
		p, err := t.Select(common)
		if err != nil {
			return nil, err
		}
		projected = append(projected, p)
	}
	return Unify(projected), nil
}
