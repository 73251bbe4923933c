package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mwieler/bili-calculator/internal/config"
	"github.com/mwieler/bili-calculator/internal/engine"
	"github.com/mwieler/bili-calculator/internal/tables"
)

var (
	cfg   *config.Config
	eng   *engine.Engine
	store *tables.Store
)

var rootCmd = &cobra.Command{
	Use:   "bili-calculator",
	Short: "Newborn bilirubin management threshold calculator",
	Long:  "Computes phototherapy, escalation-of-care, and exchange-transfusion thresholds per the 2022 AAP hyperbilirubinemia guideline and maps measured TSB values to clinical guidance.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		st, err := tables.Load()
		if err != nil {
			return fmt.Errorf("load reference tables: %w", err)
		}
		store = st

		e, err := engine.New(store, cfg.Engine)
		if err != nil {
			return fmt.Errorf("init engine: %w", err)
		}
		eng = e

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
