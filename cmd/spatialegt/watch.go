package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sydleither/spatial-egt/internal/config"
	"github.com/sydleither/spatial-egt/internal/core"
	"github.com/sydleither/spatial-egt/internal/platform/tui"
	"github.com/sydleither/spatial-egt/internal/registry"
)

var (
	flagWatchConfig string
	flagWatchExpDir string
	flagWatchExp    string
	flagTickRate    int
)

var watchCmd = &cobra.Command{
	Use:   "watch <dimension>",
	Short: "Watch the three models evolve live",
	Long: `Simulate an experiment in the terminal, drawing the null, adaptive and
continuous models side by side. 3D models show their central slice and
well-mixed models show their composition.

Controls:
  Space/P    - Pause
  N          - Step one day while paused
  +/-        - Faster/slower
  R          - Restart with a new seed
  Q/Ctrl+C   - Quit

Examples:
  spatialegt watch 2D
  spatialegt watch 3D --fps 30
  spatialegt watch 2D --exp-dir exp1 --exp coexist
  spatialegt watch WM --config ./experiment.yaml --seed 7`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagWatchConfig, "config", "", "Path to experiment parameters (JSON or YAML)")
	watchCmd.Flags().StringVar(&flagWatchExpDir, "exp-dir", "", "Experiment directory under output/")
	watchCmd.Flags().StringVar(&flagWatchExp, "exp", "", "Experiment name within --exp-dir")
	watchCmd.Flags().IntVar(&flagTickRate, "fps", 10, "Viewer ticks per second")
}

func runWatch(_ *cobra.Command, args []string) {
	topology := args[0]

	// Check if topology exists
	if !registry.Exists(topology) {
		fmt.Fprintf(os.Stderr, "Error: unknown dimension %q\n", topology)
		fmt.Fprintln(os.Stderr, "Run 'spatialegt topologies' to see available selectors.")
		os.Exit(1)
	}

	exp, err := config.Load(flagWatchConfig, flagWatchExpDir, flagWatchExp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagTickRate,
		Seed:     resolveSeed(flagSeed, exp.Seed),
	}

	if err := tui.RunWatch(exp, topology, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
