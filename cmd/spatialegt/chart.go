package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sydleither/spatial-egt/internal/report"
)

var flagChartOut string

var chartCmd = &cobra.Command{
	Use:   "chart <populations.csv>",
	Short: "Plot a populations file",
	Long: `Plot sensitive, resistant and total cells over time for every policy
from a populations.csv written by run. The chart is written next to the
CSV as <dimension>pop_over_time.png unless --out is given.

Examples:
  spatialegt chart output/exp1/coexist/0/2Dpopulations.csv
  spatialegt chart 2Dpopulations.csv --out coexist.png`,
	Args: cobra.ExactArgs(1),
	Run:  runChart,
}

func init() {
	chartCmd.Flags().StringVar(&flagChartOut, "out", "", "Output PNG path")
}

func runChart(_ *cobra.Command, args []string) {
	in := args[0]

	samples, err := report.ReadCSVFile(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out := flagChartOut
	if out == "" {
		out = chartPath(in)
	}

	c := report.PopulationChart{Title: filepath.Base(filepath.Dir(in))}
	if err := c.WriteFile(out, samples); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", out)
}

// chartPath derives "<dim>pop_over_time.png" from "<dim>populations.csv".
func chartPath(csvPath string) string {
	dim := strings.TrimSuffix(filepath.Base(csvPath), report.PopulationsFile(""))
	return filepath.Join(filepath.Dir(csvPath), report.ChartFile(dim))
}
