package registry

import (
	"math"

	"github.com/sydleither/spatial-egt/internal/sim"
)

func init() {
	Register(string(sim.TopologyWellMixed), "Well-mixed pool", func(Dims) sim.Space {
		return sim.NewWellMixed()
	})
	Register(string(sim.Topology2D), "2D lattice", func(d Dims) sim.Space {
		return sim.NewLattice2D(d.X, d.Y, d.Radius)
	})
	Register(string(sim.Topology3D), "3D lattice", func(d Dims) sim.Space {
		side := CubeSide(d.X, d.Y)
		return sim.NewLattice3D(side, side, side, d.Radius)
	})
}

// CubeSide returns the side of the cube holding roughly as many sites as an
// x·y plane: ⌊cbrt(x·y)⌋, but at least one.
func CubeSide(x, y int) int {
	side := int(math.Cbrt(float64(x * y)))
	// Cbrt of a perfect cube can land just below the integer.
	if (side+1)*(side+1)*(side+1) <= x*y {
		side++
	}
	return max(side, 1)
}
