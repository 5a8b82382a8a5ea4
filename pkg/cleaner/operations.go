// pkg/cleaner/operations.go
package cleaner

import (
	"strings"

	"github.com/David-Botos/datahub/pkg/model"
)

// NormalizeName canonicalizes a single column name
func NormalizeName(name string, mode model.NormalizeMode) string {
	name = strings.TrimSpace(name)
	if mode == model.NormalizeMerge {
		name = strings.ReplaceAll(strings.ToLower(name), " ", "_")
	}
	return name
}

// NormalizeNames applies NormalizeName to every name
func NormalizeNames(names []string, mode model.NormalizeMode) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = NormalizeName(n, mode)
	}
	return out
}
