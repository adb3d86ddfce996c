package report

// Game is the evolutionary game a payoff matrix describes.
type Game string

const (
	GameSensitiveWins Game = "sensitive_wins"
	GameCoexistence   Game = "coexistence"
	GameBistability   Game = "bistability"
	GameResistantWins Game = "resistant_wins"
	GameUnknown       Game = "unknown"
)

// ClassifyGame names the game of the payoff matrix [[a, b], [c, d]], with
// rows for the sensitive and resistant focal cell. Ties are unknown.
func ClassifyGame(a, b, c, d float64) Game {
	switch {
	case a > c && b > d:
		return GameSensitiveWins
	case a < c && b > d:
		return GameCoexistence
	case a > c && b < d:
		return GameBistability
	case a < c && b < d:
		return GameResistantWins
	default:
		return GameUnknown
	}
}
