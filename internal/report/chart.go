package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sydleither/spatial-egt/internal/experiment"
	"github.com/sydleither/spatial-egt/internal/sim"
)

// Line colours per policy: sensitive, resistant, total.
var policyColors = [3][3]drawing.Color{
	sim.PolicyNull: {
		{R: 244, G: 164, B: 96, A: 255}, // sandybrown
		{R: 139, G: 69, B: 19, A: 255},  // saddlebrown
		{R: 160, G: 82, B: 45, A: 255},  // sienna
	},
	sim.PolicyAdaptive: {
		{R: 255, G: 182, B: 193, A: 255}, // lightpink
		{R: 255, G: 20, B: 147, A: 255},  // deeppink
		{R: 255, G: 105, B: 180, A: 255}, // hotpink
	},
	sim.PolicyContinuous: {
		{R: 144, G: 238, B: 144, A: 255}, // lightgreen
		{R: 0, G: 100, B: 0, A: 255},     // darkgreen
		{R: 50, G: 205, B: 50, A: 255},   // limegreen
	},
}

// MinChartSamples is the fewest samples a chart can be drawn from.
const MinChartSamples = 2

// ChartFile returns the chart file name for a topology, e.g. "2Dpop_over_time.png".
func ChartFile(topology string) string {
	return topology + "pop_over_time.png"
}

// PopulationChart plots sensitive, resistant and total cells over time for
// every policy.
type PopulationChart struct {
	Title  string
	Width  int
	Height int
}

// Render writes the chart as PNG to w. At least two samples are needed.
func (c PopulationChart) Render(w io.Writer, samples []experiment.Sample) error {
	if len(samples) < MinChartSamples {
		return fmt.Errorf("report: chart needs at least %d samples, got %d", MinChartSamples, len(samples))
	}

	xs := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = float64(s.Tick)
	}

	var series []chart.Series
	for _, p := range sim.Policies {
		sens := make([]float64, len(samples))
		res := make([]float64, len(samples))
		total := make([]float64, len(samples))
		for i, s := range samples {
			counts := s.Of(p)
			sens[i] = float64(counts.Sensitive)
			res[i] = float64(counts.Resistant)
			total[i] = float64(counts.Total())
		}
		colors := policyColors[p]
		series = append(series,
			chart.ContinuousSeries{
				Name:    p.String() + " sensitive",
				XValues: xs,
				YValues: sens,
				Style:   chart.Style{StrokeColor: colors[0], StrokeWidth: 1.5},
			},
			chart.ContinuousSeries{
				Name:    p.String() + " resistant",
				XValues: xs,
				YValues: res,
				Style:   chart.Style{StrokeColor: colors[1], StrokeWidth: 1.5},
			},
			chart.ContinuousSeries{
				Name:    p.String() + " total",
				XValues: xs,
				YValues: total,
				Style:   chart.Style{StrokeColor: colors[2], StrokeWidth: 3, StrokeDashArray: []float64{5, 3}},
			},
		)
	}

	graph := chart.Chart{
		Title:  c.Title,
		Width:  c.width(),
		Height: c.height(),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name: "Time",
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name: "Cells",
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("report: render chart: %w", err)
	}
	return nil
}

// WriteFile renders the chart to path.
func (c PopulationChart) WriteFile(path string, samples []experiment.Sample) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: create chart dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create chart: %w", err)
	}
	if err := c.Render(f, samples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c PopulationChart) width() int {
	if c.Width > 0 {
		return c.Width
	}
	return 1100
}

func (c PopulationChart) height() int {
	if c.Height > 0 {
		return c.Height
	}
	return 600
}
