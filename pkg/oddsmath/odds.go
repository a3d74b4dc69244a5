// Package oddsmath concentra a matemática pura do jogo: conversão de ratings
// em odds 1x2 e atualização de rating ELO pós-partida. Sem I/O, sem estado.
package oddsmath

import "math"

const (
	// MinOdds é o piso de qualquer odd gerada.
	MinOdds = 1.05

	// drawMax é a probabilidade máxima de empate, atingida quando os ratings são iguais.
	drawMax = 0.30

	// minProb evita divisão por zero ao inverter probabilidades degeneradas.
	minProb = 1e-9
)

// Result identifica um desfecho de partida (e também a escolha de uma aposta).
type Result string

const (
	ResultHome Result = "HOME"
	ResultDraw Result = "DRAW"
	ResultAway Result = "AWAY"
)

// Valid informa se o valor é um dos três desfechos conhecidos.
func (r Result) Valid() bool {
	return r == ResultHome || r == ResultDraw || r == ResultAway
}

// Expected retorna a probabilidade de vitória do mandante pela curva logística
// do ELO: 400 pontos de diferença de rating equivalem a 10x de chance.
func Expected(home, away float64) float64 {
	return 1 / (1 + math.Pow(10, -(home-away)/400))
}

// AutoOdds calcula as odds (casa, empate, fora) a partir dos ratings das equipes.
//
// A probabilidade de empate é uma heurística simétrica: máxima com ratings
// iguais, zerando conforme a diferença cresce. O restante da massa de
// probabilidade é redistribuído entre casa e fora antes da inversão.
// Cada odd sai arredondada em 2 casas, com piso MinOdds e teto maxOdds
// (teto desligado quando maxOdds <= 0).
func AutoOdds(home, away, maxOdds float64) (h, d, a float64) {
	pHome := Expected(home, away)
	pDraw := drawMax * (1 - 2*math.Abs(pHome-0.5))

	realHome := pHome * (1 - pDraw)
	realAway := (1 - pHome) * (1 - pDraw)

	return toOdds(realHome, maxOdds), toOdds(pDraw, maxOdds), toOdds(realAway, maxOdds)
}

// toOdds inverte uma probabilidade em odd com arredondamento, piso e teto.
func toOdds(p, maxOdds float64) float64 {
	if p < minProb {
		p = minProb
	}
	o := math.Round(100/p) / 100
	if o < MinOdds {
		o = MinOdds
	}
	if maxOdds > 0 && o > maxOdds {
		o = maxOdds
	}
	return o
}

// Payout retorna o prêmio de uma aposta vencedora: floor(valor * odd).
func Payout(amount int64, odds float64) int64 {
	return int64(math.Floor(float64(amount) * odds))
}
