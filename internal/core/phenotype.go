package core

// Phenotype is the fixed type of a cell, assigned at birth.
type Phenotype uint8

const (
	Sensitive Phenotype = iota
	Resistant
)

// String returns the lowercase phenotype name used in CSV headers and logs.
func (p Phenotype) String() string {
	switch p {
	case Sensitive:
		return "sensitive"
	case Resistant:
		return "resistant"
	default:
		return "unknown"
	}
}

// Counts holds the number of live cells per phenotype.
type Counts struct {
	Sensitive int
	Resistant int
}

// Total returns the number of live cells.
func (c Counts) Total() int {
	return c.Sensitive + c.Resistant
}

// Add increments the counter for p by delta.
func (c *Counts) Add(p Phenotype, delta int) {
	if p == Resistant {
		c.Resistant += delta
		return
	}
	c.Sensitive += delta
}

// Of returns the count for a single phenotype.
func (c Counts) Of(p Phenotype) int {
	if p == Resistant {
		return c.Resistant
	}
	return c.Sensitive
}

// ResistantFraction returns Resistant/Total, or 0 for an empty population.
func (c Counts) ResistantFraction() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c.Resistant) / float64(total)
}
