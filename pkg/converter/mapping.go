// pkg/converter/mapping.go
package converter

import (
	"time"
)

// dateLayouts lists the accepted date spellings in priority order
var dateLayouts = []string{
	time.RFC3339,                       // ISO8601 with zone
	"2006-01-02T15:04:05",              // ISO8601 local
	"2006-01-02T15:04:05.999999",       // ISO8601 with microseconds
	"2006-01-02 15:04:05",              // SQL timestamp
	"2006-01-02 15:04",                 // SQL timestamp without seconds
	"2006-01-02",                       // Date only
	"2006/01/02",                       // Slash ISO
	"01/02/2006",                       // Month first
	"02/01/2006",                       // Day first
	"01/02/2006 15:04",                 // Month first with time
	"02/01/2006 15:04",                 // Day first with time
	"01-02-2006",                       // Dashed month first
	"02-01-2006",                       // Dashed day first
	"02.01.2006",                       // Dotted day first
	"20060102",                         // Compact
	"2006-01-02T15:04:05.999999Z07:00", // ISO8601 with microseconds and TZ
}

// DetectTimeFormat analyzes a value to determine its date layout
func DetectTimeFormat(value string) string {
	for _, format := range dateLayouts {
		if _, err := time.Parse(format, value); err == nil {
			return format
		}
	}
	return ""
}
