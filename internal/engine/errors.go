package engine

import "github.com/rotisserie/eris"

// The two fault kinds the engine can surface. Both indicate defective
// reference data or an input that escaped validation, never an expected
// runtime condition; callers distinguish them with eris.Is.
var (
	// ErrDataNotAvailable means the table store lacks an entry the lookup
	// logic expected to find: a missing bucket after key resolution, or a
	// missing hour below the plateau.
	ErrDataNotAvailable = eris.New("engine: reference data not available")

	// ErrUnresolvableKey means gestational-age key resolution exhausted
	// every priority rule without a match.
	ErrUnresolvableKey = eris.New("engine: gestational age does not resolve to a bucket")
)
