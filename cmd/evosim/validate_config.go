package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/evosim/internal/config"
	"github.com/GoCodeAlone/evosim/internal/engine"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Args:  cobra.NoArgs,
	Short: "Validate a balance config file without starting a run",
	RunE:  runValidateConfig,
}

func runValidateConfig(cmd *cobra.Command, args []string) error {
	balance, err := config.LoadLayered(cfgFile)
	if err != nil {
		return &engine.ConfigError{Reason: err.Error()}
	}
	fmt.Printf("config ok: dispersal_rate=%.3f tradeoff_ratio=%.3f divergence_threshold=%.3f\n",
		balance.DispersalRate, balance.TradeoffRatio, balance.DivergenceThreshold)
	return nil
}
