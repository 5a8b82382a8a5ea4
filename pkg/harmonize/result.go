// pkg/harmonize/result.go
package harmonize

import (
	"errors"
	"fmt"

	"github.com/David-Botos/datahub/pkg/model"
)

var (
	// ErrIdentifierUnresolved means zero or several distinct identifiers were
	// found and no manual identifier was given
	ErrIdentifierUnresolved = errors.New("identifier not uniquely determined, a manual identifier is required")
	// ErrNoMatchingRecords means no row of any input contains the canonical identifier
	ErrNoMatchingRecords = errors.New("no records match the canonical identifier")
)

// Outcome tells the caller how a harmonization ended
type Outcome int

const (
	// OutcomeHarmonized means records were produced
	OutcomeHarmonized Outcome = iota
	// OutcomeUnresolved means the caller must ask for a manual identifier
	OutcomeUnresolved
	// OutcomeNoMatchingRecords means the identifier was resolved but matched no row
	OutcomeNoMatchingRecords
)

// String returns a string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeHarmonized:
		return "Harmonized"
	case OutcomeUnresolved:
		return "Unresolved"
	case OutcomeNoMatchingRecords:
		return "NoMatchingRecords"
	default:
		return fmt.Sprintf("Unknown(%d)", o)
	}
}

// Input is one file's contribution to a harmonization session
type Input struct {
	Filename  string
	Table     model.NormalizedTable
	Candidate model.IdentifierCandidate
}

// Result is the outcome of one harmonization session
type Result struct {
	CanonicalID *string        // nil when unresolved
	DistinctIDs []string       // candidate identifiers seen, deduplicated case-insensitively
	Mismatches  []string       // files whose identifier is missing or differs, sorted
	Records     *model.Table   // harmonized record set
	RowsPerFile map[string]int // rows each file contributed
	Outcome     Outcome
}

// Canonical returns the canonical identifier or ""
func (r Result) Canonical() string {
	if r.CanonicalID == nil {
		return ""
	}
	return *r.CanonicalID
}

// HasMismatches reports whether any file was flagged
func (r Result) HasMismatches() bool {
	return len(r.Mismatches) > 0
}

// Err maps non-harmonized outcomes to their sentinel errors
func (r Result) Err() error {
	switch r.Outcome {
	case OutcomeUnresolved:
		return ErrIdentifierUnresolved
	case OutcomeNoMatchingRecords:
		return ErrNoMatchingRecords
	default:
		return nil
	}
}
