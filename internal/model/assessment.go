// Package model defines the data types shared across the bilirubin
// calculator: reference tables, assessment inputs, and assessment results.
package model

// AssessmentInput is one patient's already-validated measurement context.
// Presence of any risk factor selects the risk-adjusted table pair; which
// specific factor is present never changes the numbers, it is only echoed
// back in the assessment context.
type AssessmentInput struct {
	GestationalAgeWeeks int      `json:"gestational_age_weeks"`
	AgeHours            int      `json:"age_hours"`
	BilirubinMgDL       float64  `json:"bilirubin_mg_dl"`
	RiskFactors         []string `json:"risk_factors,omitempty"`
}

// HasRiskFactors reports whether at least one neurotoxicity risk factor is
// present.
func (in AssessmentInput) HasRiskFactors() bool {
	return len(in.RiskFactors) > 0
}

// DerivedThresholds holds the four clinical thresholds for one patient
// coordinate. By construction ExchangeTransfusion >= EscalationOfCare and
// Phototherapy >= TranscutaneousConfirmation.
type DerivedThresholds struct {
	Phototherapy               float64 `json:"phototherapy"`
	EscalationOfCare           float64 `json:"escalation_of_care"`
	ExchangeTransfusion        float64 `json:"exchange_transfusion"`
	TranscutaneousConfirmation float64 `json:"transcutaneous_confirmation"`
}

// ClinicalStatus compares a measured bilirubin against the derived
// thresholds. All comparisons are inclusive: a value exactly at a threshold
// counts as requiring the intervention.
type ClinicalStatus struct {
	RequiresPhototherapy     bool `json:"requires_phototherapy"`
	RequiresEscalationOfCare bool `json:"requires_escalation_of_care"`
	RequiresExchange         bool `json:"requires_exchange"`
	ConfirmTcBWithTSB        bool `json:"confirm_tcb_with_tsb"`
}

// Differences holds the signed distances between the measured value and
// each intervention threshold. Negative means below the threshold.
type Differences struct {
	FromPhototherapy float64 `json:"from_phototherapy"`
	FromEscalation   float64 `json:"from_escalation"`
	FromExchange     float64 `json:"from_exchange"`
}

// Guidance holds the textual recommendations selected for an assessment.
// DischargeConsiderations is present only for near-threshold infants in the
// first day of life.
type Guidance struct {
	ImmediateAction         string  `json:"immediate_action"`
	FollowUpRecommendation  string  `json:"follow_up_recommendation"`
	DischargeConsiderations *string `json:"discharge_considerations,omitempty"`
}

// AssessmentContext records which guideline figure produced the numbers and
// echoes the inputs the caller supplied.
type AssessmentContext struct {
	RiskFactorsPresent  bool     `json:"risk_factors_present"`
	RiskFactors         []string `json:"risk_factors,omitempty"`
	GuidelineFigure     string   `json:"guideline_figure"`
	GestationalAgeWeeks int      `json:"gestational_age_weeks"`
	AgeHours            int      `json:"age_hours"`
}

// AssessmentResult is the full outcome of one assessment. A fresh value is
// produced per call; nothing is shared or mutated across calls.
type AssessmentResult struct {
	BilirubinMgDL float64           `json:"bilirubin_mg_dl"`
	Thresholds    DerivedThresholds `json:"thresholds"`
	Status        ClinicalStatus    `json:"status"`
	Differences   Differences       `json:"differences"`
	Guidance      Guidance          `json:"guidance"`
	Context       AssessmentContext `json:"context"`
}
