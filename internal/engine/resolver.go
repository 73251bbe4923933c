package engine

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/mwieler/bili-calculator/internal/model"
)

// Grouped upper buckets published by the guideline. The no-risk
// phototherapy chart folds everything at or above 40 weeks into one curve;
// the risk-adjusted phototherapy chart and both exchange charts fold
// everything at or above 38 weeks.
const (
	groupedWeeksPhotoNoRisk = 40
	groupedWeeksOther       = 38
)

// ResolveKey maps a continuous gestational age in weeks to the table's
// bucket key, applying the chart-specific groupings first, then exact floor
// match, then clamping to the table's key range. A floored value that falls
// in a gap between defined buckets is a data-integrity fault.
func ResolveKey(t *model.ReferenceTable, gestationalAgeWeeks float64) (int, error) {
	if grouped, ok := groupedKey(t, gestationalAgeWeeks); ok {
		return grouped, nil
	}

	floored := int(math.Floor(gestationalAgeWeeks))
	if _, ok := t.Buckets[floored]; ok {
		return floored, nil
	}

	minKey, maxKey, ok := t.KeyRange()
	if !ok {
		return 0, eris.Wrapf(ErrUnresolvableKey, "resolver: table %q has no buckets", t.Kind)
	}
	if floored >= maxKey {
		return maxKey, nil
	}
	if floored <= minKey {
		return minKey, nil
	}

	// Bucket keys are contiguous integers in well-formed tables, so a gap
	// hit means corrupt keys rather than a bad input.
	return 0, eris.Wrapf(ErrUnresolvableKey,
		"resolver: table %q: %d weeks falls between defined buckets", t.Kind, floored)
}

// groupedKey applies the per-chart wide-band groupings. It reports ok=false
// when no grouping applies (or the grouped bucket is absent), letting
// resolution fall through to the discrete rules.
func groupedKey(t *model.ReferenceTable, gestationalAgeWeeks float64) (int, bool) {
	var grouped int
	switch t.Kind {
	case model.PhototherapyNoRisk:
		grouped = groupedWeeksPhotoNoRisk
	case model.PhototherapyWithRisk, model.ExchangeNoRisk, model.ExchangeWithRisk:
		grouped = groupedWeeksOther
	default:
		return 0, false
	}

	if gestationalAgeWeeks < float64(grouped) {
		return 0, false
	}
	if _, ok := t.Buckets[grouped]; !ok {
		return 0, false
	}
	return grouped, true
}
