package game

import "strings"

// Point is a position on the screen in fractions of its width and height.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Confetti is the settings bundle handed to the particle renderer.
type Confetti struct {
	ParticleCount int      `json:"particleCount" yaml:"particle_count"`
	Spread        int      `json:"spread" yaml:"spread"`
	Colors        []string `json:"colors" yaml:"colors"`
	Shapes        []string `json:"shapes,omitempty" yaml:"shapes"`
	Origin        Point    `json:"origin" yaml:"origin"`
}

// DefaultConfetti matches the burst shown for big envelopes.
func DefaultConfetti() Confetti {
	return Confetti{
		ParticleCount: 150,
		Spread:        70,
		Colors:        []string{"#FFD700", "#FF0000", "#FFFFFF"},
		Shapes:        []string{"square", "circle"},
		Origin:        Point{X: 0.5, Y: 0.6},
	}
}

// Celebration decides which flips fire confetti.
type Celebration struct {
	// Threshold is an absolute amount; it does not follow the pool.
	Threshold int
	Keywords  []string
	Confetti  Confetti
}

// Celebrate returns the confetti bundle for a flip, or nil when the flip
// is not worth celebrating.
func (c Celebration) Celebrate(f Flip) *Confetti {
	if !c.matches(f) {
		return nil
	}
	conf := c.Confetti
	return &conf
}

func (c Celebration) matches(f Flip) bool {
	if f.Finished {
		return true
	}
	if f.Card.Amount >= c.Threshold {
		return true
	}
	for _, kw := range c.Keywords {
		if kw != "" && strings.Contains(f.Card.Label, kw) {
			return true
		}
	}
	return false
}
