package engine

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/mwieler/bili-calculator/internal/model"
)

// The guideline charts are defined only on hours [1, 336]; ages outside the
// domain clamp to the nearest edge.
const (
	MinChartHour = 1
	MaxChartHour = 336
)

// LookupValue returns the table's threshold at the given gestational age and
// postnatal age. The hour is clamped into [MinChartHour, MaxChartHour] and
// floored; at or beyond the bucket's plateau hour the plateau value is
// returned.
func LookupValue(t *model.ReferenceTable, gestationalAgeWeeks, ageHours float64) (float64, error) {
	key, err := ResolveKey(t, gestationalAgeWeeks)
	if err != nil {
		return 0, err
	}

	bucket, ok := t.Buckets[key]
	if !ok {
		// Unreachable for tables that passed ResolveKey, kept as a guard
		// against a store swapped out from under the resolver.
		return 0, eris.Wrapf(ErrDataNotAvailable,
			"lookup: table %q: no bucket at %d weeks", t.Kind, key)
	}

	hour := clampHour(ageHours)
	if hour >= bucket.PlateauHour {
		return bucket.PlateauValue, nil
	}

	v, ok := bucket.Values[hour]
	if !ok {
		return 0, eris.Wrapf(ErrDataNotAvailable,
			"lookup: table %q: bucket %d has no value at hour %d (plateau %d)",
			t.Kind, key, hour, bucket.PlateauHour)
	}
	return v, nil
}

// clampHour clamps into the chart domain first, then floors, so fractional
// ages below one hour map to hour 1 rather than hour 0.
func clampHour(ageHours float64) int {
	h := math.Min(math.Max(ageHours, MinChartHour), MaxChartHour)
	return int(math.Floor(h))
}
