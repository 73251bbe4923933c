package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the loaded reference tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, t := range store.All() {
			fmt.Printf("%s\n  %s\n  units: %s\n", t.Kind, t.Title, t.Units)

			keys := make([]int, 0, len(t.Buckets))
			for k := range t.Buckets {
				keys = append(keys, k)
			}
			sort.Ints(keys)

			for _, k := range keys {
				b := t.Buckets[k]
				fmt.Printf("  %2d weeks: %d hourly values, plateau %.1f mg/dL at hour %d\n",
					k, len(b.Values), b.PlateauValue, b.PlateauHour)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
