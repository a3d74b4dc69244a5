// Package repo implementa os repositórios de Users, Matches, Bets e Teams por
// cima do contrato rowstore. Toda leitura valida os campos na hora: linha com
// odd ou resultado ilegível vira erro, nunca default silencioso.
package repo

import (
	"errors"
	"time"

	"github.com/radieske/campus-toto/pkg/oddsmath"
)

// Status de ciclo de vida de uma partida na planilha.
const (
	StatusWaiting  = "WAITING"
	StatusFinished = "FINISHED"
)

// DefaultElo é o rating de um time que ainda não tem linha na worksheet Teams.
const DefaultElo = 1500

var (
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrDuplicateBet      = errors.New("duplicate bet on match")
	ErrBetOutOfRange     = errors.New("bet amount out of range")
	ErrMatchNotOpen      = errors.New("match not open for betting")
	ErrInvalidChoice     = errors.New("invalid choice")
	ErrAlreadySettled    = errors.New("match already settled")
	ErrNotFinished       = errors.New("match not finished")

	// ErrBadRow indica campo ilegível numa linha da planilha (odd não numérica,
	// resultado fora do domínio). Rejeição de validação, não crash.
	ErrBadRow = errors.New("malformed sheet row")
)

type User struct {
	Nickname string
	Balance  int64
}

type Match struct {
	ID       string
	Home     string
	Away     string
	HomeOdds float64
	DrawOdds float64
	AwayOdds float64
	Status   string
	Result   oddsmath.Result // vazio até a partida encerrar
	Stats    oddsmath.MatchStats
	Settled  bool
}

// OddsFor retorna a odd do desfecho dado.
func (m Match) OddsFor(r oddsmath.Result) float64 {
	switch r {
	case oddsmath.ResultHome:
		return m.HomeOdds
	case oddsmath.ResultDraw:
		return m.DrawOdds
	case oddsmath.ResultAway:
		return m.AwayOdds
	}
	return 0
}

type Bet struct {
	Nickname  string
	MatchID   string
	Choice    oddsmath.Result
	Amount    int64
	Timestamp time.Time
}

type Team struct {
	Name string
	Elo  int
}
