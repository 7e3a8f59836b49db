package domain

import (
	"errors"
	"slices"
)

// ErrNoMatchedValues is returned when no region received an emissions value,
// leaving nothing to calibrate the color scale against.
var ErrNoMatchedValues = errors.New("no emissions values matched any state")

// Summarize computes min, median, and max of values. The median of an even
// count is the mean of the two middle values. values is not modified.
func Summarize(values []float64) (ColorScaleParameters, error) {
	if len(values) == 0 {
		return ColorScaleParameters{}, ErrNoMatchedValues
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return ColorScaleParameters{
		Min:    sorted[0],
		Median: median,
		Max:    sorted[n-1],
	}, nil
}
