package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mwieler/bili-calculator/internal/validate"
)

var (
	thresholdsGestationalAge int
	thresholdsAgeHours       int
	thresholdsWithRisk       bool
)

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Print the four derived thresholds for a patient coordinate",
	Long: `Looks up the phototherapy and exchange-transfusion thresholds for a
gestational age and postnatal age, derives the escalation-of-care and
transcutaneous-confirmation thresholds, and prints them as JSON. Useful for
trending a patient without rerunning a full assessment.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := validate.Coordinate(thresholdsGestationalAge, thresholdsAgeHours); err != nil {
			return err
		}

		th, err := eng.DeriveThresholds(float64(thresholdsGestationalAge), float64(thresholdsAgeHours), thresholdsWithRisk)
		if err != nil {
			return eris.Wrap(err, "thresholds: derive")
		}

		out, err := json.MarshalIndent(th, "", "  ")
		if err != nil {
			return eris.Wrap(err, "thresholds: marshal")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	thresholdsCmd.Flags().IntVar(&thresholdsGestationalAge, "gestational-age", 0, "gestational age at birth in completed weeks (35-42)")
	thresholdsCmd.Flags().IntVar(&thresholdsAgeHours, "age-hours", 0, "postnatal age in hours (1-336)")
	thresholdsCmd.Flags().BoolVar(&thresholdsWithRisk, "with-risk-factors", false, "use the risk-adjusted table pair")

	_ = thresholdsCmd.MarkFlagRequired("gestational-age")
	_ = thresholdsCmd.MarkFlagRequired("age-hours")

	rootCmd.AddCommand(thresholdsCmd)
}
