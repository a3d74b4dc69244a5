package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/radieske/campus-toto/internal/rowstore"
	"github.com/radieske/campus-toto/pkg/oddsmath"
)

// Bets é o repositório do log de apostas. Append-only: aposta nunca é
// alterada nem removida da planilha.
type Bets struct {
	Store rowstore.Store
}

func NewBets(store rowstore.Store) *Bets { return &Bets{Store: store} }

func (b *Bets) Append(ctx context.Context, bet Bet) error {
	row := rowstore.Row{
		rowstore.ColNickname:  bet.Nickname,
		rowstore.ColMatchID:   bet.MatchID,
		rowstore.ColChoice:    string(bet.Choice),
		rowstore.ColAmount:    formatInt(bet.Amount),
		rowstore.ColTimestamp: bet.Timestamp.UTC().Format(time.RFC3339),
	}
	if err := b.Store.AppendRow(ctx, rowstore.SheetBets, row); err != nil {
		return fmt.Errorf("append bet %s/%s: %w", bet.Nickname, bet.MatchID, err)
	}
	return nil
}

// Exists responde se o jogador já apostou nesta partida. É a checagem
// autoritativa de aposta duplicada (a planilha em si não impõe unicidade).
func (b *Bets) Exists(ctx context.Context, nickname, matchID string) (bool, error) {
	bets, err := b.ListByUser(ctx, nickname)
	if err != nil {
		return false, err
	}
	for _, bet := range bets {
		if bet.MatchID == matchID {
			return true, nil
		}
	}
	return false, nil
}

func (b *Bets) ListByMatch(ctx context.Context, matchID string) ([]Bet, error) {
	return b.list(ctx, func(bet Bet) bool { return bet.MatchID == matchID })
}

func (b *Bets) ListByUser(ctx context.Context, nickname string) ([]Bet, error) {
	return b.list(ctx, func(bet Bet) bool { return bet.Nickname == nickname })
}

func (b *Bets) list(ctx context.Context, keep func(Bet) bool) ([]Bet, error) {
	rows, err := b.Store.GetAllRows(ctx, rowstore.SheetBets)
	if err != nil {
		return nil, err
	}
	var out []Bet
	for _, row := range rows {
		bet, err := parseBet(row)
		if err != nil {
			return nil, err
		}
		if keep(bet) {
			out = append(out, bet)
		}
	}
	return out, nil
}

func parseBet(row rowstore.Row) (Bet, error) {
	amount, err := parseInt(row, rowstore.ColAmount)
	if err != nil {
		return Bet{}, err
	}
	choice := oddsmath.Result(row[rowstore.ColChoice])
	if !choice.Valid() {
		return Bet{}, fmt.Errorf("%w: choice = %q", ErrBadRow, row[rowstore.ColChoice])
	}
	// timestamp ilegível não invalida a aposta, só fica zerado
	ts, _ := time.Parse(time.RFC3339, row[rowstore.ColTimestamp])

	return Bet{
		Nickname:  row[rowstore.ColNickname],
		MatchID:   row[rowstore.ColMatchID],
		Choice:    choice,
		Amount:    amount,
		Timestamp: ts,
	}, nil
}
