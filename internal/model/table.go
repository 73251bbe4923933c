package model

// TableKind identifies one of the four reference tables published by the
// guideline. The set is closed: every table loaded into a Store carries
// exactly one of these kinds, set at construction.
type TableKind string

const (
	PhototherapyNoRisk   TableKind = "phototherapy_no_risk"
	PhototherapyWithRisk TableKind = "phototherapy_with_risk"
	ExchangeNoRisk       TableKind = "exchange_no_risk"
	ExchangeWithRisk     TableKind = "exchange_with_risk"
)

// AllTableKinds lists every recognized table kind, in guideline order.
func AllTableKinds() []TableKind {
	return []TableKind{
		PhototherapyNoRisk,
		PhototherapyWithRisk,
		ExchangeNoRisk,
		ExchangeWithRisk,
	}
}

// IsPhototherapy reports whether the kind is one of the phototherapy tables.
func (k TableKind) IsPhototherapy() bool {
	return k == PhototherapyNoRisk || k == PhototherapyWithRisk
}

// IsExchange reports whether the kind is one of the exchange-transfusion tables.
func (k TableKind) IsExchange() bool {
	return k == ExchangeNoRisk || k == ExchangeWithRisk
}

// ReferenceTable is one immutable guideline threshold chart. Buckets are
// keyed by gestational age in completed weeks; the grouped upper bucket
// (>=40 for the no-risk phototherapy chart, >=38 elsewhere) is stored under
// its lower edge.
type ReferenceTable struct {
	Kind        TableKind         `json:"kind"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Source      string            `json:"source"`
	Units       string            `json:"units"`
	Buckets     map[int]*GABucket `json:"thresholds"`
}

// GABucket holds the hour-indexed threshold curve for one gestational-age
// group. Values must cover every integer hour from 1 through PlateauHour;
// beyond PlateauHour the curve holds PlateauValue.
type GABucket struct {
	Description  string          `json:"description"`
	PlateauHour  int             `json:"plateauHour"`
	PlateauValue float64         `json:"plateauValue"`
	Values       map[int]float64 `json:"values"`
}

// KeyRange returns the smallest and largest bucket keys in the table.
// ok is false when the table has no buckets.
func (t *ReferenceTable) KeyRange() (minKey, maxKey int, ok bool) {
	for k := range t.Buckets {
		if !ok {
			minKey, maxKey, ok = k, k, true
			continue
		}
		if k < minKey {
			minKey = k
		}
		if k > maxKey {
			maxKey = k
		}
	}
	return minKey, maxKey, ok
}
