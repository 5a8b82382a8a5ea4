// pkg/model/source.go
package model

import (
	"path/filepath"
	"strings"
)

// Format is the declared-by-extension format of a source file
type Format string

const (
	FormatUnknown Format = ""
	FormatCSV     Format = "csv"
	FormatTXT     Format = "txt"
	FormatXLS     Format = "xls"
	FormatXLSX    Format = "xlsx"
	FormatPDF     Format = "pdf"
)

// FormatFromName infers the format from a file name extension (case-insensitive)
func FormatFromName(name string) Format {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	switch Format(ext) {
	case FormatCSV, FormatTXT, FormatXLS, FormatXLSX, FormatPDF:
		return Format(ext)
	default:
		return FormatUnknown
	}
}

// Supported reports whether the extractor understands the format
func (f Format) Supported() bool {
	return f != FormatUnknown
}

// SourceFile is a named byte payload handed to the extractor once
type SourceFile struct {
	Name    string
	Content []byte
	Format  Format
}

// NewSourceFile builds a SourceFile with its format inferred from name
func NewSourceFile(name string, content []byte) SourceFile {
	return SourceFile{
		Name:    name,
		Content: content,
		Format:  FormatFromName(name),
	}
}

// IdentifierCandidate is a tentative (column, value) pair for the subject identifier.
// SourceColumn is nil when the value was recovered from free text.
type IdentifierCandidate struct {
	SourceColumn *string
	Value        *string
	Verified     bool // Value matched the identifier pattern
}

// HasValue reports whether the candidate carries an identifier value
func (c IdentifierCandidate) HasValue() bool {
	return c.Value != nil
}

// ColumnName returns the source column or "" when there is none
func (c IdentifierCandidate) ColumnName() string {
	if c.SourceColumn == nil {
		return ""
	}
	return *c.SourceColumn
}

// ValueString returns the value or "" when there is none
func (c IdentifierCandidate) ValueString() string {
	if c.Value == nil {
		return ""
	}
	return *c.Value
}
