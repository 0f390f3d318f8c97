package model

import (
	"strconv"
	"strings"
)

const (
	DefaultRowsToSkip   = 0
	DefaultColumnNumber = 1
)

// FilterSettings holds the user-configured row-skip and column-presence filter parameters
type FilterSettings struct {
	RowsToSkip          int  `json:"rows_to_skip" toml:"rows_to_skip"`
	ColumnFilterEnabled bool `json:"column_filter_enabled" toml:"column_filter_enabled"`
	// ColumnNumber is 1-based
	ColumnNumber int `json:"column_number" toml:"column_number"`
}

// DefaultFilterSettings returns settings that keep every row
func DefaultFilterSettings() FilterSettings {
	return FilterSettings{
		RowsToSkip:   DefaultRowsToSkip,
		ColumnNumber: DefaultColumnNumber,
	}
}

// Normalize replaces out-of-range values with their defaults
func (x FilterSettings) Normalize() FilterSettings {
	if x.RowsToSkip < 0 {
		x.RowsToSkip = DefaultRowsToSkip
	}
	if x.ColumnNumber < 1 {
		x.ColumnNumber = DefaultColumnNumber
	}
	return x
}

// ColumnIndex returns the 0-based index of the required column
func (x FilterSettings) ColumnIndex() int {
	return x.Normalize().ColumnNumber - 1
}

// ParseFilterSettings builds settings from raw user input. Malformed numbers are
// not rejected: they fall back to the defaults.
func ParseFilterSettings(rowsToSkip string, columnFilter bool, columnNumber string) FilterSettings {
	settings := FilterSettings{
		RowsToSkip:          DefaultRowsToSkip,
		ColumnFilterEnabled: columnFilter,
		ColumnNumber:        DefaultColumnNumber,
	}
	if n, ok := parseLeadingInt(rowsToSkip); ok {
		settings.RowsToSkip = n
	}
	if n, ok := parseLeadingInt(columnNumber); ok {
		settings.ColumnNumber = n
	}
	return settings.Normalize()
}

// ParseToggle interprets a form checkbox or flag-like value
func ParseToggle(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "on", "true", "yes", "checked":
		return true
	default:
		return false
	}
}

// parseLeadingInt reads an optionally signed run of digits at the start of s,
// ignoring leading whitespace and anything after the digits ("12abc" is 12).
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
