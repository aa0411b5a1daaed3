package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwijaya/lucky-money-be/internal/game"
)

func TestCelebration_Celebrate(t *testing.T) {
	policy := game.Celebration{
		Threshold: 500000,
		Keywords:  []string{"Lộc"},
		Confetti:  game.DefaultConfetti(),
	}

	tests := []struct {
		name string
		flip game.Flip
		want bool
	}{
		{"small amount", game.Flip{Card: game.Card{Label: "10.000 đ", Amount: 10000}}, false},
		{"at threshold", game.Flip{Card: game.Card{Label: "500.000 đ", Amount: 500000}}, true},
		{"above threshold", game.Flip{Card: game.Card{Label: "Phát - 86", Amount: 800000}}, true},
		{"lucky keyword", game.Flip{Card: game.Card{Label: "Lộc Xuân 2026", Amount: 300000}}, true},
		{"finishing flip", game.Flip{Card: game.Card{Label: "5k", Amount: 5000}, Finished: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Celebrate(tt.flip)
			if !tt.want {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, 150, got.ParticleCount)
			assert.Equal(t, 70, got.Spread)
			assert.Equal(t, 0.6, got.Origin.Y)
		})
	}
}

func TestCelebration_ReturnsCopy(t *testing.T) {
	policy := game.Celebration{Threshold: 1, Confetti: game.DefaultConfetti()}

	got := policy.Celebrate(game.Flip{Card: game.Card{Amount: 5}})
	require.NotNil(t, got)
	got.ParticleCount = 1

	assert.Equal(t, 150, policy.Confetti.ParticleCount)
}
