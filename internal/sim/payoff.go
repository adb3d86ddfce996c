package sim

import "github.com/sydleither/spatial-egt/internal/core"

// PayoffMatrix holds M[i][j], the payoff to phenotype i against phenotype j.
//
// The engine reads it as a public-goods game: a focal cell's benefit is
// its entry against Sensitive (the cooperators), and the cost Sensitive
// cells pay to produce the good is M[Sensitive][Resistant]. Resistant
// cells free-ride and pay nothing. M[Resistant][Resistant] does not
// enter the payoff; it is kept for game classification.
type PayoffMatrix [2][2]float64

// NewPayoffMatrix builds a matrix from the four experiment entries
// A=M[S][S], B=M[S][R], C=M[R][S], D=M[R][R].
func NewPayoffMatrix(a, b, c, d float64) PayoffMatrix {
	return PayoffMatrix{{a, b}, {c, d}}
}

// Benefit returns the public-goods benefit for focal phenotype p.
func (m PayoffMatrix) Benefit(p core.Phenotype) float64 {
	return m[p][core.Sensitive]
}

// Cost returns the production cost paid by Sensitive cells.
func (m PayoffMatrix) Cost() float64 {
	return m[core.Sensitive][core.Resistant]
}

// Payoff is the linear public-goods payoff of a focal cell with
// `neighbors` occupied neighbours of which `sensitive` are Sensitive.
// A cell with no neighbours has payoff 0.
//
//	Sensitive: benefit·(sensitive+1)/neighbors − cost
//	Resistant: benefit·sensitive/neighbors
func Payoff(focal core.Phenotype, neighbors, sensitive int, benefit, cost float64) float64 {
	if neighbors == 0 {
		return 0
	}
	n := float64(neighbors)
	if focal == core.Sensitive {
		return benefit*float64(sensitive+1)/n - cost
	}
	return benefit * float64(sensitive) / n
}
