package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Dump the follow-up guidance rule catalog",
	Long: `Prints the ordered follow-up guidance catalog as JSON: gap bands
below the phototherapy threshold, optional age windows, and the
recommendation each carries. Rules are matched in the order shown, first
match wins.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := json.MarshalIndent(eng.Matcher().Rules(), "", "  ")
		if err != nil {
			return eris.Wrap(err, "rules: marshal catalog")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
