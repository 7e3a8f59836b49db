package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrColumnNotFound is returned when a required column is absent from the sheet.
var ErrColumnNotFound = errors.New("column not found")

// Drop reasons, used as metric labels.
const (
	DropUnknownState = "unknown_state"
	DropInvalidValue = "invalid_value"
	DropDuplicate    = "duplicate"
)

// CleanStats counts what happened to each input row.
type CleanStats struct {
	Total    int
	Kept     int
	Dropped  map[string]int // keyed by Drop* reason
	Rejected []Rejected
}

// Rejected is one row that did not survive cleaning.
type Rejected struct {
	Line   int // 1-based sheet row, see Table.Line
	State  string
	Value  string
	Reason string
}

// DroppedTotal sums drops across all reasons.
func (s CleanStats) DroppedTotal() int {
	n := 0
	for _, v := range s.Dropped {
		n += v
	}
	return n
}

// Clean projects the state and value columns out of t and returns one row per
// recognized state. Rows with an unrecognized state or a value that does not
// parse as a finite number are dropped. When a state appears more than once
// the first occurrence wins.
func Clean(t Table, stateColumn, valueColumn string) ([]EmissionsRow, CleanStats, error) {
	stats := CleanStats{Dropped: map[string]int{}}

	si, ok := t.Column(stateColumn)
	if !ok {
		return nil, stats, fmt.Errorf("%w: %q in sheet %q", ErrColumnNotFound, stateColumn, t.Sheet)
	}
	vi, ok := t.Column(valueColumn)
	if !ok {
		return nil, stats, fmt.Errorf("%w: %q in sheet %q", ErrColumnNotFound, valueColumn, t.Sheet)
	}

	seen := make(map[string]bool, len(t.Rows))
	rows := make([]EmissionsRow, 0, len(t.Rows))
	for r := range t.Rows {
		stats.Total++
		rawState, rawValue := t.Cell(r, si), t.Cell(r, vi)
		drop := func(reason string) {
			stats.Dropped[reason]++
			stats.Rejected = append(stats.Rejected, Rejected{Line: t.Line(r), State: rawState, Value: rawValue, Reason: reason})
		}

		state, ok := LookupState(rawState)
		if !ok {
			drop(DropUnknownState)
			continue
		}
		value, ok := ParseValue(rawValue)
		if !ok {
			drop(DropInvalidValue)
			continue
		}
		if seen[state.FIPS] {
			drop(DropDuplicate)
			continue
		}
		seen[state.FIPS] = true
		rows = append(rows, EmissionsRow{State: state, Value: value})
	}
	stats.Kept = len(rows)
	return rows, stats, nil
}

// ParseValue coerces a spreadsheet cell to a finite number. Thousands
// separators and surrounding whitespace are tolerated; anything else that
// strconv rejects, as well as NaN and ±Inf, reports false.
func ParseValue(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
