package oddsmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEloDeltaNoStats(t *testing.T) {
	tests := []struct {
		name       string
		home, away float64
		result     Result
	}{
		{"vitoria do mandante equilibrada", 1500, 1500, ResultHome},
		{"empate equilibrado", 1500, 1500, ResultDraw},
		{"zebra fora de casa", 1600, 1400, ResultAway},
		{"favorito confirma", 1700, 1450, ResultHome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var actual float64
			switch tt.result {
			case ResultHome:
				actual = 1
			case ResultDraw:
				actual = 0.5
			}
			want := int(math.Round(32 * (actual - Expected(tt.home, tt.away))))
			require.Equal(t, want, EloDelta(tt.home, tt.away, tt.result, MatchStats{}))
		})
	}
}

func TestEloDeltaStatsBonus(t *testing.T) {
	stats := MatchStats{
		HomeXG:     2.4,
		AwayXG:     1.1,
		HomePasses: 520,
		AwayPasses: 410,
		HomePPDA:   8.0,
		AwayPPDA:   13.5,
	}
	// bônus = (2.4-1.1)*10 + (520-410)*0.1 + (13.5-8.0)*1 = 13 + 11 + 5.5
	bonus := 29.5
	base := 32 * (1 - Expected(1500, 1500))
	want := int(math.Round(base + bonus))

	require.Equal(t, want, EloDelta(1500, 1500, ResultHome, stats))
}

func TestEloDeltaDrawEqualRatings(t *testing.T) {
	// sem estatísticas e sem surpresa, nada muda
	require.Equal(t, 0, EloDelta(1500, 1500, ResultDraw, MatchStats{}))
}

func TestResultValid(t *testing.T) {
	require.True(t, ResultHome.Valid())
	require.True(t, ResultDraw.Valid())
	require.True(t, ResultAway.Valid())
	require.False(t, Result("").Valid())
	require.False(t, Result("HOEM").Valid())
}
