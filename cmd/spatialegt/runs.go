package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sydleither/spatial-egt/internal/experiment"
	"github.com/sydleither/spatial-egt/internal/platform/tui"
	"github.com/sydleither/spatial-egt/internal/sim"
	"github.com/sydleither/spatial-egt/internal/storage"
)

var (
	flagRunsLimit   int
	flagInteractive bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Long: `Display the most recent runs recorded in the run database.

Examples:
  spatialegt runs
  spatialegt runs --limit 50
  spatialegt runs --interactive
  spatialegt runs show 3`,
	Args: cobra.NoArgs,
	Run:  runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run's populations and progression times",
	Args:  cobra.ExactArgs(1),
	Run:   runRunsShow,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "Number of runs to list")
	runsCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse runs in a table")
	runsCmd.AddCommand(runsShowCmd)
}

func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening run database: %v\n", err)
		os.Exit(1)
	}
	return store
}

func runRuns(_ *cobra.Command, _ []string) {
	store := openStore()
	defer store.Close()

	if flagInteractive {
		width, height := 100, 30 // Defaults
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if err := tui.RunRuns(store, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	runs, err := store.RecentRuns(flagRunsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Use 'spatialegt run <expDir> <expName> <dimension> <rep>' to record one.")
		return
	}

	printRuns(os.Stdout, runs)
}

func printRuns(w io.Writer, runs []storage.Run) {
	fmt.Fprintf(w, "  %-4s  %-28s  %-3s  %-4s  %-6s  %-15s  %s\n", "ID", "Experiment", "Dim", "Rep", "Days", "Game", "Date")
	fmt.Fprintf(w, "  %-4s  %-28s  %-3s  %-4s  %-6s  %-15s  %s\n", "--", "----------", "---", "---", "----", "----", "----")
	for _, r := range runs {
		days := strconv.Itoa(r.NumDays)
		if !r.Completed {
			days += "*"
		}
		fmt.Fprintf(w, "  %-4d  %-28s  %-3s  %-4s  %-6s  %-15s  %s\n",
			r.ID, r.ExpDir+"/"+r.ExpName, r.Dimension, r.Rep, days, r.Game,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func runRunsShow(_ *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid run id %q\n", args[0])
		os.Exit(1)
	}

	store := openStore()
	defer store.Close()

	run, err := store.RunByID(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if run == nil {
		fmt.Fprintf(os.Stderr, "Error: no run with id %d\n", id)
		os.Exit(1)
	}

	series, err := store.Series(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printRunDetail(os.Stdout, run, series)
}

func printRunDetail(w io.Writer, run *storage.Run, series []experiment.Sample) {
	fmt.Fprintf(w, "Run %d - %s/%s %s rep %s\n", run.ID, run.ExpDir, run.ExpName, run.Dimension, run.Rep)
	fmt.Fprintf(w, "  seed %d, %d days, game %s, completed %t\n", run.Seed, run.NumDays, run.Game, run.Completed)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-6s", "Day")
	for _, p := range sim.Policies {
		fmt.Fprintf(w, "  %-20s", p)
	}
	fmt.Fprintln(w)
	for _, s := range series {
		fmt.Fprintf(w, "  %-6d", s.Tick)
		for _, p := range sim.Policies {
			c := s.Of(p)
			fmt.Fprintf(w, "  %-20s", fmt.Sprintf("S %d R %d", c.Sensitive, c.Resistant))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Progression (total >= %.1fx initial):\n", experiment.ProgressionFactor)
	for _, p := range sim.Policies {
		if tick, ok := experiment.ProgressionTime(series, p, experiment.ProgressionFactor); ok {
			fmt.Fprintf(w, "  %-10s day %d\n", p, tick)
		} else {
			fmt.Fprintf(w, "  %-10s never\n", p)
		}
	}
}
