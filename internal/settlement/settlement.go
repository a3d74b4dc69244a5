// Package settlement implementa a liquidação: varre partidas FINISHED ainda não
// liquidadas, paga os vencedores, ajusta o ELO dos times e marca is_settled.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/campus-toto/internal/repo"
	"github.com/radieske/campus-toto/pkg/contracts/events"
	"github.com/radieske/campus-toto/pkg/oddsmath"
)

// Publisher emite o evento de partida liquidada. Nil desliga a publicação.
type Publisher interface {
	PublishMatchSettled(ctx context.Context, e events.MatchSettled) error
}

type Engine struct {
	Log     *zap.Logger
	Users   *repo.Users
	Matches *repo.Matches
	Bets    *repo.Bets
	Teams   *repo.Teams
	Publ    Publisher

	// Callbacks de métricas, opcionais.
	OnSettled     func(winners int, paid int64)
	OnPayoutError func()
}

// SettleMatch liquida uma partida. Idempotente: partida já liquidada retorna
// done=false sem tocar em nada. Pagamento é melhor esforço por vencedor: uma
// falha de crédito é logada e o lote continua, nunca aborta a liquidação.
func (e *Engine) SettleMatch(ctx context.Context, matchID string) (events.MatchSettled, bool, error) {
	m, err := e.Matches.Get(ctx, matchID)
	if err != nil {
		return events.MatchSettled{}, false, err
	}
	if m.Settled {
		return events.MatchSettled{}, false, nil
	}
	if m.Status != repo.StatusFinished || m.Result == "" {
		return events.MatchSettled{}, false, fmt.Errorf("%w: match %s", repo.ErrNotFinished, matchID)
	}

	odds := m.OddsFor(m.Result)
	if odds < 1 {
		return events.MatchSettled{}, false, fmt.Errorf("%w: odds do resultado %s", repo.ErrBadRow, m.Result)
	}

	// Ajuste de rating antes do pagamento; falha aqui não pode travar o payout.
	delta := e.updateRatings(ctx, m)

	bets, err := e.Bets.ListByMatch(ctx, matchID)
	if err != nil {
		return events.MatchSettled{}, false, err
	}

	var winners int
	var paid int64
	for _, bet := range bets {
		if bet.Choice != m.Result {
			continue
		}
		payout := oddsmath.Payout(bet.Amount, odds)
		if _, err := e.Users.AdjustBalance(ctx, bet.Nickname, payout); err != nil {
			e.Log.Error("payout failed, skipping winner",
				zap.String("matchId", matchID),
				zap.String("nickname", bet.Nickname),
				zap.Int64("payout", payout),
				zap.Error(err),
			)
			if e.OnPayoutError != nil {
				e.OnPayoutError()
			}
			continue
		}
		winners++
		paid += payout
	}

	if err := e.Matches.MarkSettled(ctx, matchID); err != nil {
		return events.MatchSettled{}, false, fmt.Errorf("mark settled %s: %w", matchID, err)
	}

	ev := events.MatchSettled{
		MatchID:    matchID,
		Result:     string(m.Result),
		Winners:    winners,
		PaidPoints: paid,
		EloDelta:   delta,
		Ts:         time.Now(),
	}
	if e.Publ != nil {
		if err := e.Publ.PublishMatchSettled(ctx, ev); err != nil {
			e.Log.Warn("publish match_settled", zap.Error(err))
		}
	}
	if e.OnSettled != nil {
		e.OnSettled(winners, paid)
	}

	e.Log.Info("match settled",
		zap.String("matchId", matchID),
		zap.String("result", string(m.Result)),
		zap.Int("winners", winners),
		zap.Int64("paidPoints", paid),
	)
	return ev, true, nil
}

// Sweep varre todas as partidas e liquida as FINISHED pendentes. Pega também
// partidas encerradas por edição direta na planilha, sem passar pelo admin.
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	all, err := e.Matches.List(ctx)
	if err != nil {
		return 0, err
	}
	var settled int
	for _, m := range all {
		if m.Settled || m.Status != repo.StatusFinished {
			continue
		}
		if _, done, err := e.SettleMatch(ctx, m.ID); err != nil {
			e.Log.Error("sweep settle", zap.String("matchId", m.ID), zap.Error(err))
			continue
		} else if done {
			settled++
		}
	}
	return settled, nil
}

// updateRatings aplica o delta ELO nos dois times. Inteiramente melhor
// esforço: qualquer erro é logado e o retorno zero segue para o evento.
func (e *Engine) updateRatings(ctx context.Context, m repo.Match) int {
	home, err := e.Teams.Rating(ctx, m.Home)
	if err != nil {
		e.Log.Warn("rating read, skipping elo update", zap.String("team", m.Home), zap.Error(err))
		return 0
	}
	away, err := e.Teams.Rating(ctx, m.Away)
	if err != nil {
		e.Log.Warn("rating read, skipping elo update", zap.String("team", m.Away), zap.Error(err))
		return 0
	}

	delta := oddsmath.EloDelta(float64(home), float64(away), m.Result, m.Stats)
	if err := e.Teams.SetRating(ctx, m.Home, home+delta); err != nil {
		e.Log.Warn("rating write", zap.String("team", m.Home), zap.Error(err))
	}
	if err := e.Teams.SetRating(ctx, m.Away, away-delta); err != nil {
		e.Log.Warn("rating write", zap.String("team", m.Away), zap.Error(err))
	}
	return delta
}

// IsNotReady informa se o erro é só "partida ainda não encerrou", caso em que
// o worker não deve mandar o evento para a DLQ.
func IsNotReady(err error) bool { return errors.Is(err, repo.ErrNotFinished) }
