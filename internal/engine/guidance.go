package engine

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mwieler/bili-calculator/internal/config"
	"github.com/mwieler/bili-calculator/internal/model"
)

// Immediate-action labels, evaluated top-down against the escalating
// thresholds; the first reached wins.
const (
	ActionExchange     = "Begin exchange transfusion"
	ActionEscalate     = "Begin intensive phototherapy and prepare for possible exchange transfusion"
	ActionPhototherapy = "Begin phototherapy"
	ActionNone         = "No phototherapy required"
)

// FollowUpFallback is returned when no catalog band matches. This is a
// deliberate safety degrade for gaps in the authored catalog, never an
// error; occurrences are counted so an incomplete catalog is observable.
const FollowUpFallback = "No guidance band matched; use clinical judgment for follow-up"

// followUpAtThreshold is the fixed follow-up string when phototherapy is
// already indicated.
const followUpAtThreshold = "Phototherapy indicated; see immediate action"

// Matcher selects guidance strings from the ordered rule catalog.
type Matcher struct {
	cfg       config.EngineConfig
	rules     []Rule
	fallbacks atomic.Int64
}

// NewMatcher builds a Matcher over the embedded catalog, resolving the
// catalog's named age windows against the configured hours.
func NewMatcher(cfg config.EngineConfig) (*Matcher, error) {
	rules, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	resolved, err := resolveAgeWindows(cfg, rules)
	if err != nil {
		return nil, err
	}
	return NewMatcherWithRules(cfg, resolved), nil
}

// NewMatcherWithRules builds a Matcher over an explicit rule list. Used by
// tests exercising the match algorithm apart from the shipped catalog.
func NewMatcherWithRules(cfg config.EngineConfig, rules []Rule) *Matcher {
	return &Matcher{cfg: cfg, rules: rules}
}

// Rules returns a copy of the catalog in match order. The bound pointers
// are cloned so callers cannot mutate the catalog in place.
func (m *Matcher) Rules() []Rule {
	out := make([]Rule, len(m.rules))
	for i, r := range m.rules {
		r.GapLowMgDL = clonePtr(r.GapLowMgDL)
		r.GapHighMgDL = clonePtr(r.GapHighMgDL)
		r.AgeLowHours = clonePtr(r.AgeLowHours)
		r.AgeHighHours = clonePtr(r.AgeHighHours)
		out[i] = r
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// FallbackCount reports how many Match calls degraded to the generic
// recommendation because no band matched.
func (m *Matcher) FallbackCount() int64 {
	return m.fallbacks.Load()
}

// Match selects the immediate action, the follow-up recommendation, and the
// optional discharge caveat for a measured value against derived
// thresholds.
func (m *Matcher) Match(measured float64, th model.DerivedThresholds, ageHours float64) model.Guidance {
	g := model.Guidance{
		ImmediateAction: immediateAction(measured, th),
	}

	diff := measured - th.Phototherapy
	if diff >= 0 {
		g.FollowUpRecommendation = followUpAtThreshold
	} else {
		g.FollowUpRecommendation = m.matchFollowUp(-diff, ageHours)
	}

	// Near-threshold infants in the first day of life get a discharge
	// caveat: within the TcB offset of the phototherapy threshold.
	if ageHours < float64(m.cfg.DischargeWarningHours) && diff > -m.cfg.TcBOffsetMgDL {
		caveat := fmt.Sprintf(
			"TSB is within %g mg/dL of the phototherapy threshold before %d hours of life; consider delaying discharge and arranging early follow-up",
			m.cfg.TcBOffsetMgDL, m.cfg.DischargeWarningHours)
		g.DischargeConsiderations = &caveat
	}

	return g
}

// matchFollowUp scans the catalog in order for the first rule covering the
// gap and age. gap is the positive distance below the phototherapy
// threshold.
func (m *Matcher) matchFollowUp(gap, ageHours float64) string {
	for _, r := range m.rules {
		if r.Matches(gap, ageHours) {
			return r.Recommendation
		}
	}

	m.fallbacks.Add(1)
	zap.L().Warn("engine: no guidance band matched, using fallback",
		zap.Float64("gap_mg_dl", gap),
		zap.Float64("age_hours", ageHours),
		zap.Int64("fallback_count", m.fallbacks.Load()),
	)
	return FollowUpFallback
}

// immediateAction picks the most severe indicated intervention. The
// branches are mutually exclusive in practice because exchange >= escalation
// >= phototherapy by construction.
func immediateAction(measured float64, th model.DerivedThresholds) string {
	switch {
	case measured >= th.ExchangeTransfusion:
		return ActionExchange
	case measured >= th.EscalationOfCare:
		return ActionEscalate
	case measured >= th.Phototherapy:
		return ActionPhototherapy
	default:
		return ActionNone
	}
}
