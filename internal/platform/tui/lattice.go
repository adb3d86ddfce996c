package tui

import (
	"fmt"

	"github.com/sydleither/spatial-egt/internal/core"
	"github.com/sydleither/spatial-egt/internal/experiment"
	"github.com/sydleither/spatial-egt/internal/sim"
)

const (
	cellRune  = '█'
	panelGap  = 1
	minPanelW = 8
)

// DrawModels draws the three policy models side by side into area, one
// boxed panel each. Spatial models show the lattice (the central z-slice
// in 3D), cropped around its centre when it does not fit. Well-mixed
// models show a bar of the phenotype composition.
func DrawModels(dst *core.Screen, ms experiment.Models, area core.Rect) {
	panels := area.Columns(len(ms), panelGap)
	if panels[0].W < minPanelW || area.H < 4 {
		dst.DrawText(area.X, area.Y, "terminal too small")
		return
	}

	for i, m := range ms {
		panel := panels[i]
		dst.DrawBox(panel)
		dst.DrawTextColored(panel.X+2, panel.Y, " "+sim.Policies[i].String()+" ", core.ColorWhite)

		if plane, ok := sim.PlaneOf(m.Space()); ok {
			drawPlane(dst, plane, panel.Inset(1))
		} else {
			drawComposition(dst, m.Counts(), panel.Inset(1))
		}
	}
}

// drawPlane draws the sites of plane that fit in area, centred.
func drawPlane(dst *core.Screen, plane sim.Plane, area core.Rect) {
	w, h := plane.Dims()
	offX := max((w-area.W)/2, 0)
	offY := max((h-area.H)/2, 0)
	padX := max((area.W-w)/2, 0)
	padY := max((area.H-h)/2, 0)

	for sy := 0; sy < min(h, area.H); sy++ {
		for sx := 0; sx < min(w, area.W); sx++ {
			p, ok := plane.PhenotypeAt(sx+offX, sy+offY)
			if !ok {
				continue
			}
			dst.SetColored(area.X+padX+sx, area.Y+padY+sy, cellRune, core.PhenotypeColor(p))
		}
	}
}

// drawComposition draws a horizontal bar split by phenotype, with counts.
func drawComposition(dst *core.Screen, c core.Counts, area core.Rect) {
	y := area.Y + area.H/2
	total := c.Total()
	if total == 0 {
		dst.DrawTextColored(area.X, y, centerText("extinct", area.W), core.ColorGray)
		return
	}

	resistantW := int(float64(area.W)*c.ResistantFraction() + 0.5)
	for x := 0; x < area.W; x++ {
		p := core.Sensitive
		if x >= area.W-resistantW {
			p = core.Resistant
		}
		dst.SetColored(area.X+x, y, cellRune, core.PhenotypeColor(p))
	}
	dst.DrawTextColored(area.X, y+1, fmt.Sprintf("S %d", c.Sensitive), core.ColorPink)
	label := fmt.Sprintf("R %d", c.Resistant)
	dst.DrawTextColored(area.Right()-len(label), y+1, label, core.ColorSeaGreen)
}
