package domain

import (
	"strings"
	"unicode"
)

// State is one of the 51 regions drawn on the map: the 50 states plus the
// District of Columbia.
type State struct {
	FIPS   string // two-digit census code, e.g. "06"
	Abbrev string // USPS code, e.g. "CA"
	Name   string // display name, e.g. "California"
}

// states is ordered by FIPS code.
var states = []State{
	{"01", "AL", "Alabama"},
	{"02", "AK", "Alaska"},
	{"04", "AZ", "Arizona"},
	{"05", "AR", "Arkansas"},
	{"06", "CA", "California"},
	{"08", "CO", "Colorado"},
	{"09", "CT", "Connecticut"},
	{"10", "DE", "Delaware"},
	{"11", "DC", "District of Columbia"},
	{"12", "FL", "Florida"},
	{"13", "GA", "Georgia"},
	{"15", "HI", "Hawaii"},
	{"16", "ID", "Idaho"},
	{"17", "IL", "Illinois"},
	{"18", "IN", "Indiana"},
	{"19", "IA", "Iowa"},
	{"20", "KS", "Kansas"},
	{"21", "KY", "Kentucky"},
	{"22", "LA", "Louisiana"},
	{"23", "ME", "Maine"},
	{"24", "MD", "Maryland"},
	{"25", "MA", "Massachusetts"},
	{"26", "MI", "Michigan"},
	{"27", "MN", "Minnesota"},
	{"28", "MS", "Mississippi"},
	{"29", "MO", "Missouri"},
	{"30", "MT", "Montana"},
	{"31", "NE", "Nebraska"},
	{"32", "NV", "Nevada"},
	{"33", "NH", "New Hampshire"},
	{"34", "NJ", "New Jersey"},
	{"35", "NM", "New Mexico"},
	{"36", "NY", "New York"},
	{"37", "NC", "North Carolina"},
	{"38", "ND", "North Dakota"},
	{"39", "OH", "Ohio"},
	{"40", "OK", "Oklahoma"},
	{"41", "OR", "Oregon"},
	{"42", "PA", "Pennsylvania"},
	{"44", "RI", "Rhode Island"},
	{"45", "SC", "South Carolina"},
	{"46", "SD", "South Dakota"},
	{"47", "TN", "Tennessee"},
	{"48", "TX", "Texas"},
	{"49", "UT", "Utah"},
	{"50", "VT", "Vermont"},
	{"51", "VA", "Virginia"},
	{"53", "WA", "Washington"},
	{"54", "WV", "West Virginia"},
	{"55", "WI", "Wisconsin"},
	{"56", "WY", "Wyoming"},
}

// aliases maps alternate spellings seen in published tables to FIPS codes.
var aliases = map[string]string{
	"washington dc":        "11",
	"washington d.c.":      "11",
	"d.c.":                 "11",
	"district of columbia": "11",
}

var stateIndex = buildStateIndex()

func buildStateIndex() map[string]State {
	idx := make(map[string]State, len(states)*3+len(aliases))
	byFIPS := make(map[string]State, len(states))
	for _, s := range states {
		byFIPS[s.FIPS] = s
		idx[s.FIPS] = s
		idx[strings.ToLower(s.Abbrev)] = s
		idx[NormalizeStateKey(s.Name)] = s
	}
	for alias, fips := range aliases {
		idx[alias] = byFIPS[fips]
	}
	return idx
}

// States returns the canonical regions in FIPS order. The slice is a copy.
func States() []State {
	out := make([]State, len(states))
	copy(out, states)
	return out
}

// NormalizeStateKey reduces a raw state identifier to its comparable form:
// surrounding whitespace and trailing footnote markers removed, internal
// whitespace collapsed, lower case.
func NormalizeStateKey(raw string) string {
	s := strings.TrimRightFunc(strings.TrimSpace(raw), func(r rune) bool {
		return r == '*' || r == '†' || r == '‡'
	})
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func isAllDigits(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// LookupState resolves a name, USPS code, or FIPS code to a canonical State.
// One-digit FIPS codes ("6") are zero padded. Territories and aggregate
// rows such as "United States" are not recognized.
func LookupState(raw string) (State, bool) {
	key := NormalizeStateKey(raw)
	if key == "" {
		return State{}, false
	}
	if len(key) == 1 && isAllDigits(key) {
		key = "0" + key
	}
	s, ok := stateIndex[key]
	return s, ok
}
