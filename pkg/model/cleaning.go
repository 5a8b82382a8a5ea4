// pkg/model/cleaning.go
package model

// ColumnOperation records one change the normalizer made to a column name
type ColumnOperation struct {
	Source    string // File or table the column belongs to
	Column    string // Column name before normalization
	NewName   string // Column name after normalization (empty when dropped)
	Operation string // Kind of change (e.g., "rename", "drop_duplicate")
	Reason    string // Why the change happened (e.g., "merge_normalize")
}

// NormalizeMode selects how column names are canonicalized
type NormalizeMode int

const (
	// NormalizeDisplay trims surrounding whitespace only
	NormalizeDisplay NormalizeMode = iota
	// NormalizeMerge trims, lowercases and turns spaces into underscores
	NormalizeMerge
)

// String returns a string representation of the mode
func (m NormalizeMode) String() string {
	if m == NormalizeMerge {
		return "merge"
	}
	return "display"
}

// NormalizedTable is a table whose column names went through the normalizer
type NormalizedTable struct {
	Source string // File the table was extracted from
	Mode   NormalizeMode
	Table  *Table
}
