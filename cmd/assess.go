package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mwieler/bili-calculator/internal/model"
	"github.com/mwieler/bili-calculator/internal/validate"
)

var (
	assessGestationalAge int
	assessAgeHours       int
	assessBilirubin      float64
	assessRiskFactors    []string
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess one measured bilirubin value",
	Long: `Computes the four clinical thresholds for a patient, compares the
measured TSB against them, and prints the full assessment as JSON.

Examples:
  # Term infant, day two, no risk factors
  bili-calculator assess --gestational-age 39 --age-hours 48 --bilirubin 10

  # Late preterm with a neurotoxicity risk factor
  bili-calculator assess --gestational-age 36 --age-hours 30 --bilirubin 12 \
    --risk-factor sepsis`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		in := model.AssessmentInput{
			GestationalAgeWeeks: assessGestationalAge,
			AgeHours:            assessAgeHours,
			BilirubinMgDL:       assessBilirubin,
			RiskFactors:         assessRiskFactors,
		}

		if err := validate.Input(in); err != nil {
			return err
		}

		result, err := eng.Assess(in)
		if err != nil {
			return eris.Wrap(err, "assess: run assessment")
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return eris.Wrap(err, "assess: marshal result")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	assessCmd.Flags().IntVar(&assessGestationalAge, "gestational-age", 0, "gestational age at birth in completed weeks (35-42)")
	assessCmd.Flags().IntVar(&assessAgeHours, "age-hours", 0, "postnatal age in hours (1-336)")
	assessCmd.Flags().Float64Var(&assessBilirubin, "bilirubin", 0, "measured total serum bilirubin in mg/dL")
	assessCmd.Flags().StringArrayVar(&assessRiskFactors, "risk-factor", nil, "neurotoxicity risk factor (repeatable)")

	_ = assessCmd.MarkFlagRequired("gestational-age")
	_ = assessCmd.MarkFlagRequired("age-hours")
	_ = assessCmd.MarkFlagRequired("bilirubin")

	rootCmd.AddCommand(assessCmd)
}
