// spatialegt simulates sensitive and resistant tumour cells playing an
// evolutionary game under three treatment policies.
//
// Usage:
//
//	spatialegt run <expDir> <expName> <dimension> <rep>  - Run one replicate
//	spatialegt watch <dimension>                         - Watch models evolve live
//	spatialegt serve                                     - Serve the live viewer over SSH
//	spatialegt runs                                      - List recorded runs
//	spatialegt chart <populations.csv>                   - Plot a populations file
//	spatialegt topologies                                - List topology selectors
//
// Global flags:
//
//	--seed <value>       - Set RNG seed for reproducible runs
//	--db <path>          - Set run database path (default: ~/.spatialegt/runs.db)
//	--log-level <level>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "spatialegt",
	Short: "Spatial evolutionary game theory of adaptive therapy",
	Long: `spatialegt runs agent-based models of drug-sensitive and drug-resistant
tumour cells. Each experiment runs three models side by side: no treatment
(null), adaptive therapy and continuous therapy.

Available commands:
  run         - Run one replicate and write populations.csv
  watch       - Watch the three models evolve in the terminal
  serve       - Start SSH server for remote viewing
  runs        - List recorded runs
  chart       - Plot a populations file
  topologies  - List topology selectors

Examples:
  spatialegt run exp1 coexist 2D 0
  spatialegt run exp1 coexist 3D 0 --visualize --granularity 10
  spatialegt watch 2D --config ./experiment.yaml
  spatialegt runs show 3`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = experiment seed, or random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.spatialegt/runs.db", "Path to run database (empty disables)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(topologiesCmd)
}

// newLogger builds the process logger from --log-level.
func newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})

	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// resolveSeed picks the --seed flag, then the experiment seed, then the clock.
func resolveSeed(flagged, experimentSeed int64) int64 {
	switch {
	case flagged != 0:
		return flagged
	case experimentSeed != 0:
		return experimentSeed
	default:
		return time.Now().UnixNano()
	}
}
