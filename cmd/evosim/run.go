package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/evosim/internal/engine"
	"github.com/GoCodeAlone/evosim/internal/logging"
)

var runLogger = logging.For("cmd.run")

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Advance the engine a fixed number of turns",
	Long:  `Generates a fresh world and advances it for --turns turns, printing a one-line summary per turn.`,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().Int("width", 32, "world width in tiles")
	runCmd.Flags().Int("height", 32, "world height in tiles")
	runCmd.Flags().Int("plates", 8, "number of tectonic plates")
	runCmd.Flags().Int64("seed", 1, "world generation seed")
	runCmd.Flags().Int("turns", 10, "number of turns to advance")
	runCmd.Flags().Bool("force-fallback", false, "force the dense CPU backend even if an accelerator backend is available")
	runCmd.Flags().Bool("metrics", false, "collect prometheus metrics in memory (not exposed without a scrape endpoint)")
	runCmd.Flags().Bool("watch", false, "show a live terminal status view instead of per-turn log lines")
}

func runRun(cmd *cobra.Command, args []string) error {
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	plates, _ := cmd.Flags().GetInt("plates")
	seed, _ := cmd.Flags().GetInt64("seed")
	turns, _ := cmd.Flags().GetInt("turns")
	forceFallback, _ := cmd.Flags().GetBool("force-fallback")
	enableMetrics, _ := cmd.Flags().GetBool("metrics")
	watch, _ := cmd.Flags().GetBool("watch")

	boot, err := bootstrapEngine(runOptions{
		Width: width, Height: height, NumPlates: plates, Seed: seed,
		ConfigPath: cfgFile, ForceFallback: forceFallback, EnableMetrics: enableMetrics,
	})
	if err != nil {
		return err
	}

	runLogger.Info().Str("session", boot.SessionID).Int("turns", turns).Str("backend", boot.Engine.Backend.Name()).Msg("run: starting")

	if watch {
		return runWatch(boot, turns)
	}
	return runHeadless(boot, turns)
}

func runHeadless(boot *bootstrapResult, turns int) error {
	ctx := context.Background()
	for i := 0; i < turns; i++ {
		report, err := boot.Engine.RunTurn(ctx, engine.TurnRequest{})
		if err != nil {
			return err
		}
		fmt.Printf("turn %d: species_alive=%d food_web_health=%.3f triggers=%d reemerged=%d\n",
			report.TurnIndex,
			len(boot.Engine.Repo.Alive()),
			report.FoodWeb.HealthScore,
			len(report.Triggers),
			len(report.Reemerged),
		)
	}
	return nil
}
