package oddsmath

import "math"

const (
	kFactor = 32

	// Pesos do bônus de desempenho somado ao delta base do ELO.
	xgWeight   = 10.0
	passWeight = 0.1
	ppdaWeight = 1.0
)

// MatchStats são as estatísticas de desempenho opcionais de uma partida.
// Campos ausentes na planilha entram como zero.
type MatchStats struct {
	HomeXG     float64
	AwayXG     float64
	HomePasses float64
	AwayPasses float64
	HomePPDA   float64
	AwayPPDA   float64
}

// EloDelta calcula o ajuste de rating pós-partida, aplicado como +delta no
// mandante e -delta no visitante.
//
// Base: K * (placar real - placar esperado), placar real 1/0.5/0 conforme o
// resultado. Bônus: diferenciais de xG e passes (casa - fora) e de PPDA no
// sentido fora - casa, já que PPDA menor indica pressão maior.
func EloDelta(home, away float64, result Result, stats MatchStats) int {
	var actual float64
	switch result {
	case ResultHome:
		actual = 1
	case ResultDraw:
		actual = 0.5
	case ResultAway:
		actual = 0
	}

	base := kFactor * (actual - Expected(home, away))
	bonus := (stats.HomeXG-stats.AwayXG)*xgWeight +
		(stats.HomePasses-stats.AwayPasses)*passWeight +
		(stats.AwayPPDA-stats.HomePPDA)*ppdaWeight

	return int(math.Round(base + bonus))
}
