package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwieler/bili-calculator/internal/config"
	"github.com/mwieler/bili-calculator/internal/model"
	"github.com/mwieler/bili-calculator/internal/tables"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	store, err := tables.Load()
	require.NoError(t, err)
	e, err := New(store, config.DefaultEngineConfig())
	require.NoError(t, err)
	return e
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	store, err := tables.Load()
	require.NoError(t, err)

	bad := config.DefaultEngineConfig()
	bad.TcBOffsetMgDL = -1
	_, err = New(store, bad)
	require.Error(t, err)
}

// TestThresholdOffsetOrdering checks the construction invariants across the
// whole input domain: exchange >= escalation and phototherapy >= TcB
// confirmation, for both table pairs.
func TestThresholdOffsetOrdering(t *testing.T) {
	e := newTestEngine(t)

	for ga := 35; ga <= 42; ga++ {
		for _, age := range []float64{1, 24, 48, 96, 200, 336} {
			for _, hasRisk := range []bool{false, true} {
				th, err := e.DeriveThresholds(float64(ga), age, hasRisk)
				require.NoError(t, err, "ga=%d age=%g risk=%v", ga, age, hasRisk)

				assert.GreaterOrEqual(t, th.ExchangeTransfusion, th.EscalationOfCare)
				assert.GreaterOrEqual(t, th.Phototherapy, th.TranscutaneousConfirmation)
				assert.GreaterOrEqual(t, th.EscalationOfCare, th.Phototherapy,
					"escalation below phototherapy at ga=%d age=%g risk=%v", ga, age, hasRisk)
			}
		}
	}
}

func TestDeriveThresholdsAppliesOffsets(t *testing.T) {
	e := newTestEngine(t)

	th, err := e.DeriveThresholds(38, 48, false)
	require.NoError(t, err)

	assert.InDelta(t, th.ExchangeTransfusion-2.0, th.EscalationOfCare, 0.0001)
	assert.InDelta(t, th.Phototherapy-2.0, th.TranscutaneousConfirmation, 0.0001)
}

func TestRiskTablesAreStricter(t *testing.T) {
	e := newTestEngine(t)

	for ga := 35; ga <= 40; ga++ {
		for _, age := range []float64{12, 48, 96, 200} {
			standard, err := e.DeriveThresholds(float64(ga), age, false)
			require.NoError(t, err)
			adjusted, err := e.DeriveThresholds(float64(ga), age, true)
			require.NoError(t, err)

			assert.Less(t, adjusted.Phototherapy, standard.Phototherapy,
				"risk-adjusted phototherapy must be strictly lower at ga=%d age=%g", ga, age)
			assert.Less(t, adjusted.ExchangeTransfusion, standard.ExchangeTransfusion,
				"risk-adjusted exchange must be strictly lower at ga=%d age=%g", ga, age)
		}
	}
}

func TestEvaluateStatusInclusiveBoundaries(t *testing.T) {
	th := model.DerivedThresholds{
		Phototherapy:               14,
		TranscutaneousConfirmation: 12,
		EscalationOfCare:           18,
		ExchangeTransfusion:        20,
	}

	tests := []struct {
		name     string
		measured float64
		want     model.ClinicalStatus
	}{
		{"below all", 11, model.ClinicalStatus{}},
		{"exactly at tcb", 12, model.ClinicalStatus{ConfirmTcBWithTSB: true}},
		{"exactly at phototherapy", 14, model.ClinicalStatus{ConfirmTcBWithTSB: true, RequiresPhototherapy: true}},
		{"exactly at escalation", 18, model.ClinicalStatus{ConfirmTcBWithTSB: true, RequiresPhototherapy: true, RequiresEscalationOfCare: true}},
		{"exactly at exchange", 20, model.ClinicalStatus{ConfirmTcBWithTSB: true, RequiresPhototherapy: true, RequiresEscalationOfCare: true, RequiresExchange: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateStatus(tt.measured, th))
		})
	}
}

func TestComputeDifferences(t *testing.T) {
	th := model.DerivedThresholds{
		Phototherapy:        14,
		EscalationOfCare:    18,
		ExchangeTransfusion: 20,
	}

	d := ComputeDifferences(15, th)
	assert.InDelta(t, 1.0, d.FromPhototherapy, 0.0001)
	assert.InDelta(t, -3.0, d.FromEscalation, 0.0001)
	assert.InDelta(t, -5.0, d.FromExchange, 0.0001)
}

func TestAssessTermInfantBelowThreshold(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Assess(model.AssessmentInput{
		GestationalAgeWeeks: 39,
		AgeHours:            48,
		BilirubinMgDL:       10,
	})
	require.NoError(t, err)

	require.Greater(t, result.Thresholds.Phototherapy, 10.0,
		"the 39-week no-risk curve at 48 hours sits above 10 mg/dL")
	assert.False(t, result.Status.RequiresPhototherapy)
	assert.False(t, result.Status.RequiresExchange)
	assert.Equal(t, ActionNone, result.Guidance.ImmediateAction)
	assert.NotEqual(t, FollowUpFallback, result.Guidance.FollowUpRecommendation)
	assert.Nil(t, result.Guidance.DischargeConsiderations)

	assert.False(t, result.Context.RiskFactorsPresent)
	assert.Equal(t, FigureStandard, result.Context.GuidelineFigure)
	assert.Equal(t, 39, result.Context.GestationalAgeWeeks)
	assert.Equal(t, 48, result.Context.AgeHours)
	assert.Negative(t, result.Differences.FromPhototherapy)
}

func TestAssessRiskFactorSelectsAdjustedTables(t *testing.T) {
	e := newTestEngine(t)

	withRisk, err := e.Assess(model.AssessmentInput{
		GestationalAgeWeeks: 37,
		AgeHours:            72,
		BilirubinMgDL:       15,
		RiskFactors:         []string{"sepsis"},
	})
	require.NoError(t, err)

	noRisk, err := e.Assess(model.AssessmentInput{
		GestationalAgeWeeks: 37,
		AgeHours:            72,
		BilirubinMgDL:       15,
	})
	require.NoError(t, err)

	assert.Less(t, withRisk.Thresholds.Phototherapy, noRisk.Thresholds.Phototherapy,
		"risk-adjusted phototherapy threshold must be strictly lower")
	assert.True(t, withRisk.Context.RiskFactorsPresent)
	assert.Equal(t, FigureRiskAdjusted, withRisk.Context.GuidelineFigure)
	assert.Equal(t, []string{"sepsis"}, withRisk.Context.RiskFactors)
	assert.True(t, withRisk.Status.RequiresPhototherapy,
		"15 mg/dL exceeds the risk-adjusted 37-week curve at 72 hours")
}

func TestAssessIdempotent(t *testing.T) {
	e := newTestEngine(t)

	in := model.AssessmentInput{
		GestationalAgeWeeks: 36,
		AgeHours:            30,
		BilirubinMgDL:       11.4,
		RiskFactors:         []string{"g6pd_deficiency"},
	}

	first, err := e.Assess(in)
	require.NoError(t, err)
	second, err := e.Assess(in)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical input against an unchanged store must yield identical output")
}

func TestAssessGroupedBoundaries(t *testing.T) {
	e := newTestEngine(t)

	// 40 and 42 weeks share the grouped no-risk phototherapy curve.
	at40, err := e.DeriveThresholds(40, 48, false)
	require.NoError(t, err)
	at42, err := e.DeriveThresholds(42, 48, false)
	require.NoError(t, err)
	assert.Equal(t, at40.Phototherapy, at42.Phototherapy)

	// 38 and 41 weeks share the grouped risk-adjusted curve.
	at38, err := e.DeriveThresholds(38, 48, true)
	require.NoError(t, err)
	at41, err := e.DeriveThresholds(41, 48, true)
	require.NoError(t, err)
	assert.Equal(t, at38.Phototherapy, at41.Phototherapy)
	assert.Equal(t, at38.ExchangeTransfusion, at41.ExchangeTransfusion)

	// The grouped 40-week curve sits above the discrete 39-week curve.
	at39, err := e.DeriveThresholds(39, 48, false)
	require.NoError(t, err)
	assert.Greater(t, at40.Phototherapy, at39.Phototherapy)
}
