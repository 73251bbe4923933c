// Package engine computes clinical bilirubin-management thresholds and
// guidance per the 2022 AAP hyperbilirubinemia guideline. Every operation
// is a pure, synchronous computation over the immutable table store; a
// loaded Engine is safe for concurrent callers.
package engine

import (
	"go.uber.org/zap"

	"github.com/mwieler/bili-calculator/internal/config"
	"github.com/mwieler/bili-calculator/internal/model"
	"github.com/mwieler/bili-calculator/internal/tables"
)

// Guideline figure labels reported in the assessment context. Which figure
// applies depends solely on whether any neurotoxicity risk factor is
// present.
const (
	FigureStandard     = "standard curves (no neurotoxicity risk factors)"
	FigureRiskAdjusted = "risk-adjusted curves (neurotoxicity risk factors present)"
)

// Engine binds the reference table store, the clinical constants, and the
// guidance matcher.
type Engine struct {
	store   *tables.Store
	cfg     config.EngineConfig
	matcher *Matcher
}

// New builds an Engine over a loaded table store. The engine constants are
// validated and the embedded guidance catalog is parsed up front so every
// later call is infallible except for table faults.
func New(store *tables.Store, cfg config.EngineConfig) (*Engine, error) {
	if err := config.ValidateEngine(cfg); err != nil {
		return nil, err
	}
	matcher, err := NewMatcher(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{store: store, cfg: cfg, matcher: matcher}, nil
}

// Matcher exposes the engine's guidance matcher for callers recomputing
// guidance on a trended value without rederiving thresholds.
func (e *Engine) Matcher() *Matcher {
	return e.matcher
}

// DeriveThresholds looks up the phototherapy and exchange values for the
// coordinate and derives the two offset thresholds. hasRiskFactors selects
// the risk-adjusted table pair.
func (e *Engine) DeriveThresholds(gestationalAgeWeeks, ageHours float64, hasRiskFactors bool) (model.DerivedThresholds, error) {
	photoKind, exchangeKind := model.PhototherapyNoRisk, model.ExchangeNoRisk
	if hasRiskFactors {
		photoKind, exchangeKind = model.PhototherapyWithRisk, model.ExchangeWithRisk
	}

	photoTable, err := e.store.Table(photoKind)
	if err != nil {
		return model.DerivedThresholds{}, err
	}
	exchangeTable, err := e.store.Table(exchangeKind)
	if err != nil {
		return model.DerivedThresholds{}, err
	}

	photo, err := LookupValue(photoTable, gestationalAgeWeeks, ageHours)
	if err != nil {
		return model.DerivedThresholds{}, err
	}
	exchange, err := LookupValue(exchangeTable, gestationalAgeWeeks, ageHours)
	if err != nil {
		return model.DerivedThresholds{}, err
	}

	return model.DerivedThresholds{
		Phototherapy:               photo,
		EscalationOfCare:           exchange - e.cfg.EscalationOffsetMgDL,
		ExchangeTransfusion:        exchange,
		TranscutaneousConfirmation: photo - e.cfg.TcBOffsetMgDL,
	}, nil
}

// EvaluateStatus compares a measured bilirubin against each threshold.
// Comparisons are inclusive on the raw values, no rounding.
func EvaluateStatus(measured float64, th model.DerivedThresholds) model.ClinicalStatus {
	return model.ClinicalStatus{
		RequiresPhototherapy:     measured >= th.Phototherapy,
		RequiresEscalationOfCare: measured >= th.EscalationOfCare,
		RequiresExchange:         measured >= th.ExchangeTransfusion,
		ConfirmTcBWithTSB:        measured >= th.TranscutaneousConfirmation,
	}
}

// ComputeDifferences returns the signed distances from each intervention
// threshold.
func ComputeDifferences(measured float64, th model.DerivedThresholds) model.Differences {
	return model.Differences{
		FromPhototherapy: measured - th.Phototherapy,
		FromEscalation:   measured - th.EscalationOfCare,
		FromExchange:     measured - th.ExchangeTransfusion,
	}
}

// Assess runs the full pipeline for one validated input and assembles the
// result record. Deterministic: identical input against an unchanged store
// yields an identical result.
func (e *Engine) Assess(in model.AssessmentInput) (*model.AssessmentResult, error) {
	hasRisk := in.HasRiskFactors()

	th, err := e.DeriveThresholds(float64(in.GestationalAgeWeeks), float64(in.AgeHours), hasRisk)
	if err != nil {
		return nil, err
	}

	status := EvaluateStatus(in.BilirubinMgDL, th)
	diffs := ComputeDifferences(in.BilirubinMgDL, th)
	guidance := e.matcher.Match(in.BilirubinMgDL, th, float64(in.AgeHours))

	figure := FigureStandard
	if hasRisk {
		figure = FigureRiskAdjusted
	}

	zap.L().Debug("engine: assessment complete",
		zap.Int("gestational_age_weeks", in.GestationalAgeWeeks),
		zap.Int("age_hours", in.AgeHours),
		zap.Float64("bilirubin_mg_dl", in.BilirubinMgDL),
		zap.Bool("risk_factors_present", hasRisk),
		zap.Bool("requires_phototherapy", status.RequiresPhototherapy),
	)

	return &model.AssessmentResult{
		BilirubinMgDL: in.BilirubinMgDL,
		Thresholds:    th,
		Status:        status,
		Differences:   diffs,
		Guidance:      guidance,
		Context: model.AssessmentContext{
			RiskFactorsPresent:  hasRisk,
			RiskFactors:         in.RiskFactors,
			GuidelineFigure:     figure,
			GestationalAgeWeeks: in.GestationalAgeWeeks,
			AgeHours:            in.AgeHours,
		},
	}, nil
}
