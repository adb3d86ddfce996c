// Package core provides the fundamental types shared by the simulation
// engine and its front ends: the per-model random source, phenotypes,
// lattice neighbourhood geometry, and the character screen buffer.
// It has no external dependencies so the engine stays pure and testable.
package core

// Rect represents an axis-aligned rectangle on a Screen.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge (exclusive).
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge (exclusive).
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Inset returns r shrunk by n on every side. Width and height never go
// below zero.
func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, W: max(r.W-2*n, 0), H: max(r.H-2*n, 0)}
}

// Columns splits r into n equal-width columns separated by gap cells.
// Leftover width goes unused on the right.
func (r Rect) Columns(n, gap int) []Rect {
	if n <= 0 {
		return nil
	}
	w := max((r.W-(n-1)*gap)/n, 0)
	cols := make([]Rect, n)
	for i := range cols {
		cols[i] = Rect{X: r.X + i*(w+gap), Y: r.Y, W: w, H: r.H}
	}
	return cols
}
