// Command evosim runs the tensor ecology/tectonics/speciation engine
// headless or with a live terminal status view (spec.md §6 "CLI surface").
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/evosim/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	version  = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "evosim",
	Short:   "Tensor-based ecology, tectonics and speciation engine",
	Long:    `evosim runs the per-turn tensor kernel pipeline, tectonic plate motion and speciation services over a hex-grid world.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			level = zerolog.InfoLevel
		}
		logging.SetLevel(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "balance config YAML file (default compiled-in defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}
