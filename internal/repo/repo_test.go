package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/radieske/campus-toto/internal/rowstore"
	"github.com/radieske/campus-toto/pkg/oddsmath"
)

func TestUsersGetOrCreate(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(rowstore.NewMemory(), 3000)

	u, created, err := users.GetOrCreate(ctx, "ana")
	require.NoError(t, err)
	require.True(t, created)
	require.EqualValues(t, 3000, u.Balance)

	// segunda chamada encontra, não recadastra
	u, created, err = users.GetOrCreate(ctx, "ana")
	require.NoError(t, err)
	require.False(t, created)
	require.EqualValues(t, 3000, u.Balance)
}

func TestUsersAdjustBalance(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(rowstore.NewMemory(), 3000)
	_, _, err := users.GetOrCreate(ctx, "ana")
	require.NoError(t, err)

	after, err := users.AdjustBalance(ctx, "ana", -500)
	require.NoError(t, err)
	require.EqualValues(t, 2500, after)

	after, err = users.AdjustBalance(ctx, "ana", 1000)
	require.NoError(t, err)
	require.EqualValues(t, 3500, after)

	// débito maior que o saldo é recusado sem escrever
	_, err = users.AdjustBalance(ctx, "ana", -4000)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	u, err := users.Get(ctx, "ana")
	require.NoError(t, err)
	require.EqualValues(t, 3500, u.Balance)
}

func TestUsersNotFound(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(rowstore.NewMemory(), 3000)
	_, err := users.Get(ctx, "fantasma")
	require.ErrorIs(t, err, rowstore.ErrRowNotFound)
}

func TestMatchesCreateComputesOdds(t *testing.T) {
	ctx := context.Background()
	matches := NewMatches(rowstore.NewMemory(), 5.0)

	m, err := matches.Create(ctx, "M1", "Economia", "Letras", 1600, 1400)
	require.NoError(t, err)

	wantH, wantD, wantA := oddsmath.AutoOdds(1600, 1400, 5.0)
	require.Equal(t, wantH, m.HomeOdds)
	require.Equal(t, wantD, m.DrawOdds)
	require.Equal(t, wantA, m.AwayOdds)
	require.Equal(t, StatusWaiting, m.Status)
	require.False(t, m.Settled)

	// releitura da planilha bate com o que foi criado
	got, err := matches.Get(ctx, "M1")
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestMatchesCreateDuplicateID(t *testing.T) {
	ctx := context.Background()
	matches := NewMatches(rowstore.NewMemory(), 5.0)
	_, err := matches.Create(ctx, "M1", "A", "B", 1500, 1500)
	require.NoError(t, err)
	_, err = matches.Create(ctx, "M1", "C", "D", 1500, 1500)
	require.ErrorIs(t, err, ErrBadRow)
}

func TestMatchesFinishAndSettle(t *testing.T) {
	ctx := context.Background()
	matches := NewMatches(rowstore.NewMemory(), 5.0)
	_, err := matches.Create(ctx, "M1", "A", "B", 1500, 1500)
	require.NoError(t, err)

	stats := oddsmath.MatchStats{HomeXG: 2.1, AwayXG: 0.8, HomePasses: 480, AwayPasses: 390, HomePPDA: 9.5, AwayPPDA: 14}
	require.NoError(t, matches.Finish(ctx, "M1", oddsmath.ResultHome, stats))

	m, err := matches.Get(ctx, "M1")
	require.NoError(t, err)
	require.Equal(t, StatusFinished, m.Status)
	require.Equal(t, oddsmath.ResultHome, m.Result)
	require.Equal(t, stats, m.Stats)
	require.False(t, m.Settled)

	require.NoError(t, matches.MarkSettled(ctx, "M1"))
	m, err = matches.Get(ctx, "M1")
	require.NoError(t, err)
	require.True(t, m.Settled)

	// partida liquidada não aceita novo encerramento
	require.ErrorIs(t, matches.Finish(ctx, "M1", oddsmath.ResultAway, oddsmath.MatchStats{}), ErrAlreadySettled)
}

func TestMatchesFinishInvalidResult(t *testing.T) {
	ctx := context.Background()
	matches := NewMatches(rowstore.NewMemory(), 5.0)
	_, err := matches.Create(ctx, "M1", "A", "B", 1500, 1500)
	require.NoError(t, err)
	require.ErrorIs(t, matches.Finish(ctx, "M1", "EMPATE", oddsmath.MatchStats{}), ErrInvalidChoice)
}

func TestMatchesListWaiting(t *testing.T) {
	ctx := context.Background()
	matches := NewMatches(rowstore.NewMemory(), 5.0)
	_, err := matches.Create(ctx, "M1", "A", "B", 1500, 1500)
	require.NoError(t, err)
	_, err = matches.Create(ctx, "M2", "C", "D", 1500, 1500)
	require.NoError(t, err)
	require.NoError(t, matches.Finish(ctx, "M1", oddsmath.ResultDraw, oddsmath.MatchStats{}))

	open, err := matches.ListWaiting(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, "M2", open[0].ID)
}

func TestMatchesRepriceOnlyWhileWaiting(t *testing.T) {
	ctx := context.Background()
	matches := NewMatches(rowstore.NewMemory(), 5.0)
	_, err := matches.Create(ctx, "M1", "A", "B", 1500, 1500)
	require.NoError(t, err)

	m, err := matches.Reprice(ctx, "M1", 1700, 1300)
	require.NoError(t, err)
	wantH, _, _ := oddsmath.AutoOdds(1700, 1300, 5.0)
	require.Equal(t, wantH, m.HomeOdds)

	require.NoError(t, matches.Finish(ctx, "M1", oddsmath.ResultHome, oddsmath.MatchStats{}))
	_, err = matches.Reprice(ctx, "M1", 1500, 1500)
	require.ErrorIs(t, err, ErrMatchNotOpen)
}

func TestMatchesMalformedOdds(t *testing.T) {
	ctx := context.Background()
	store := rowstore.NewMemory()
	require.NoError(t, store.AppendRow(ctx, rowstore.SheetMatches, rowstore.Row{
		rowstore.ColMatchID:   "M1",
		rowstore.ColHomeOdds:  "muito alta",
		rowstore.ColDrawOdds:  "3.00",
		rowstore.ColAwayOdds:  "4.00",
		rowstore.ColStatus:    StatusWaiting,
		rowstore.ColIsSettled: "FALSE",
	}))

	matches := NewMatches(store, 5.0)
	_, err := matches.Get(ctx, "M1")
	require.ErrorIs(t, err, ErrBadRow)
}

func TestBetsAppendAndQueries(t *testing.T) {
	ctx := context.Background()
	bets := NewBets(rowstore.NewMemory())
	now := time.Now()

	require.NoError(t, bets.Append(ctx, Bet{Nickname: "ana", MatchID: "M1", Choice: oddsmath.ResultHome, Amount: 500, Timestamp: now}))
	require.NoError(t, bets.Append(ctx, Bet{Nickname: "bruno", MatchID: "M1", Choice: oddsmath.ResultAway, Amount: 200, Timestamp: now}))
	require.NoError(t, bets.Append(ctx, Bet{Nickname: "ana", MatchID: "M2", Choice: oddsmath.ResultDraw, Amount: 100, Timestamp: now}))

	exists, err := bets.Exists(ctx, "ana", "M1")
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = bets.Exists(ctx, "bruno", "M2")
	require.NoError(t, err)
	require.False(t, exists)

	byMatch, err := bets.ListByMatch(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, byMatch, 2)

	byUser, err := bets.ListByUser(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	require.EqualValues(t, 500, byUser[0].Amount)
}

func TestTeamsDefaultAndSet(t *testing.T) {
	ctx := context.Background()
	teams := NewTeams(rowstore.NewMemory())

	elo, err := teams.Rating(ctx, "Economia")
	require.NoError(t, err)
	require.Equal(t, DefaultElo, elo)

	require.NoError(t, teams.SetRating(ctx, "Economia", 1516))
	elo, err = teams.Rating(ctx, "Economia")
	require.NoError(t, err)
	require.Equal(t, 1516, elo)

	// atualização em linha existente, não append duplicado
	require.NoError(t, teams.SetRating(ctx, "Economia", 1500))
	elo, err = teams.Rating(ctx, "Economia")
	require.NoError(t, err)
	require.Equal(t, 1500, elo)
}
