// Package validate performs clinical range pre-checks on assessment inputs
// before they reach the threshold engine. The engine itself only guards
// data integrity; clinical input policy lives here.
package validate

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/mwieler/bili-calculator/internal/model"
)

// The guideline applies to infants of 35 or more weeks gestation; charts
// are defined through 42 weeks and 14 days of life.
const (
	MinGestationalAgeWeeks = 35
	MaxGestationalAgeWeeks = 42
	MinAgeHours            = 1
	MaxAgeHours            = 336
	MaxBilirubinMgDL       = 30.0
)

// RecognizedRiskFactors lists the hyperbilirubinemia neurotoxicity risk
// factors the guideline names. Presence of any one selects the
// risk-adjusted table pair; the specific factor never changes the numbers.
var RecognizedRiskFactors = []string{
	"isoimmune_hemolytic_disease",
	"g6pd_deficiency",
	"asphyxia",
	"sepsis",
	"acidosis",
	"albumin_below_3_g_dl",
	"significant_lethargy",
	"temperature_instability",
}

// Coordinate checks a gestational age and postnatal age against the
// guideline's chart domain, for threshold lookups that carry no
// measurement.
func Coordinate(gestationalAgeWeeks, ageHours int) error {
	if errs := coordinateViolations(gestationalAgeWeeks, ageHours); len(errs) > 0 {
		return eris.Errorf("validate: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Input checks one assessment input against the guideline's valid ranges,
// accumulating every violation into a single error.
func Input(in model.AssessmentInput) error {
	errs := coordinateViolations(in.GestationalAgeWeeks, in.AgeHours)

	if in.BilirubinMgDL <= 0 || in.BilirubinMgDL > MaxBilirubinMgDL {
		errs = append(errs, fmt.Sprintf("bilirubin must be greater than 0 and at most %g mg/dL, got %g",
			MaxBilirubinMgDL, in.BilirubinMgDL))
	}
	for _, rf := range in.RiskFactors {
		if !recognizedRiskFactor(rf) {
			errs = append(errs, fmt.Sprintf("unrecognized risk factor %q", rf))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("validate: %s", strings.Join(errs, "; "))
	}
	return nil
}

func coordinateViolations(gestationalAgeWeeks, ageHours int) []string {
	var errs []string
	if gestationalAgeWeeks < MinGestationalAgeWeeks || gestationalAgeWeeks > MaxGestationalAgeWeeks {
		errs = append(errs, fmt.Sprintf("gestational age must be between %d and %d weeks, got %d",
			MinGestationalAgeWeeks, MaxGestationalAgeWeeks, gestationalAgeWeeks))
	}
	if ageHours < MinAgeHours || ageHours > MaxAgeHours {
		errs = append(errs, fmt.Sprintf("age must be between %d and %d hours, got %d",
			MinAgeHours, MaxAgeHours, ageHours))
	}
	return errs
}

func recognizedRiskFactor(name string) bool {
	for _, rf := range RecognizedRiskFactors {
		if strings.EqualFold(name, rf) {
			return true
		}
	}
	return false
}
