package core

// RuntimeConfig contains settings that are not part of an experiment's
// parameters: the RNG seed and, for the terminal viewer, screen geometry.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulated days per second in the live viewer
	Seed     int64 // Experiment seed; 0 means derive from the clock at the CLI boundary
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 10,
		Seed:     0,
	}
}
