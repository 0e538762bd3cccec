package ingest

import (
	"strconv"
	"strings"
	"time"
)

// ParseMoney converts a currency-formatted cell to a float. Symbols,
// thousands separators and whitespace are stripped; anything that still
// fails to parse coerces to 0 rather than erroring, per the cell-anomaly
// policy.
func ParseMoney(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '$', '€', '£', '¥', ',', ' ':
			continue
		default:
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

// parseFloatCell coerces a numeric cell, returning 0 for anything
// unparsable.
func parseFloatCell(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// parseCountCell coerces a count cell and clamps negatives to zero.
// Counts exported from spreadsheets sometimes arrive as "1234.0".
func parseCountCell(s string) int64 {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return int64(f)
	}
	return 0
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

// parseDateCell parses a date cell, returning the zero time for
// unparsable values instead of an error.
func parseDateCell(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTimestampCell parses an event timestamp, zero time on failure.
func parseTimestampCell(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
