package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for screen elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorGray
	ColorPink
	ColorSeaGreen
)

// PhenotypeColor is the color a cell of phenotype p is drawn with.
func PhenotypeColor(p Phenotype) Color {
	if p == Resistant {
		return ColorSeaGreen
	}
	return ColorPink
}
