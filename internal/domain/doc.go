// Package domain models per-capita emissions by U.S. state and the pieces
// needed to turn them into a choropleth.
//
// # Join Key
//
// Both sides of the join are reduced to the two-digit census FIPS code before
// they meet. Spreadsheet cells and GeoJSON features may carry a full name
// ("California"), a USPS code ("CA"), or a FIPS code ("06"); all three pass
// through [LookupState], so the key is normalized the same way on each side.
// Only the 50 states and the District of Columbia are recognized. Territories
// and aggregate rows ("United States", "Total") are dropped.
//
// Normalization:
//
//	"  New   York* "  →  "new york"
//	"Washington DC"   →  FIPS 11
//	"6"               →  FIPS 06
//
// # Cleaning
//
// [Clean] keeps exactly two columns. Values go through [ParseValue], a
// fallible parse that reports false instead of failing the run; such rows are
// counted in [CleanStats] and skipped. When a state repeats, the first row
// wins and later rows are counted as duplicates.
//
// # Color Scale
//
// [Summarize] yields min, median, and max. The median anchors the middle of
// the gradient so a few very high emitters (Wyoming, North Dakota) do not
// compress every other state into the low end. [ColorScale] interpolates in
// CIELAB between the three anchors and clamps outside the observed range:
//
//	min ── Low ────── median ── Mid ────── max ── High
//
// If every value is equal the scale is flat and [ColorScale.At] returns Mid.
package domain
