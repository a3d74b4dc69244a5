package consumer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/campus-toto/internal/repo"
	"github.com/radieske/campus-toto/internal/rowstore"
	"github.com/radieske/campus-toto/internal/settlement"
	"github.com/radieske/campus-toto/pkg/contracts/events"
	"github.com/radieske/campus-toto/pkg/oddsmath"
)

type capture struct {
	channels []string
	payloads [][]byte
}

func (c *capture) Publish(ctx context.Context, channel string, payload []byte) error {
	c.channels = append(c.channels, channel)
	c.payloads = append(c.payloads, payload)
	return nil
}

type testEnv struct {
	proc    *Processor
	users   *repo.Users
	matches *repo.Matches
	bets    *repo.Bets
	bcast   *capture
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	store := rowstore.NewMemory()
	log := zap.NewNop()

	users := repo.NewUsers(store, 3000)
	matches := repo.NewMatches(store, 5.0)
	bets := repo.NewBets(store)
	teams := repo.NewTeams(store)
	bcast := &capture{}

	proc := &Processor{
		Log: log,
		Engine: &settlement.Engine{
			Log:     log,
			Users:   users,
			Matches: matches,
			Bets:    bets,
			Teams:   teams,
		},
		Bcast: bcast,
	}
	return &testEnv{proc: proc, users: users, matches: matches, bets: bets, bcast: bcast}
}

func finishedEvent(t *testing.T, matchID, result string) []byte {
	t.Helper()
	b, err := json.Marshal(events.MatchFinished{MatchID: matchID, Result: result})
	require.NoError(t, err)
	return b
}

func TestHandleMessageSettlesFinishedMatch(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	_, _, err := env.users.GetOrCreate(ctx, "ana")
	require.NoError(t, err)
	m, err := env.matches.Create(ctx, "m1", "Poli Galo", "FEA United", 1500, 1500)
	require.NoError(t, err)

	_, err = env.users.AdjustBalance(ctx, "ana", -500)
	require.NoError(t, err)
	require.NoError(t, env.bets.Append(ctx, repo.Bet{
		Nickname: "ana", MatchID: "m1", Choice: oddsmath.ResultHome, Amount: 500,
	}))
	require.NoError(t, env.matches.Finish(ctx, "m1", oddsmath.ResultHome, oddsmath.MatchStats{}))

	err = env.proc.HandleMessage(ctx, []byte("m1"), finishedEvent(t, "m1", "HOME"))
	require.NoError(t, err)

	u, err := env.users.Get(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, 2500+oddsmath.Payout(500, m.HomeOdds), u.Balance)

	// broadcast de liquidação no canal do hub
	require.Len(t, env.bcast.channels, 1)
	var upd struct {
		MatchID string `json:"matchId"`
		Kind    string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(env.bcast.payloads[0], &upd))
	require.Equal(t, "m1", upd.MatchID)
	require.Equal(t, "match_settled", upd.Kind)
}

func TestHandleMessageSkipsNotReadyMatch(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	_, err := env.matches.Create(ctx, "m1", "Poli Galo", "FEA United", 1500, 1500)
	require.NoError(t, err)

	// evento chegou antes da planilha refletir o FINISHED: pula sem erro,
	// a varredura periódica resolve depois
	err = env.proc.HandleMessage(ctx, []byte("m1"), finishedEvent(t, "m1", "HOME"))
	require.NoError(t, err)

	got, err := env.matches.Get(ctx, "m1")
	require.NoError(t, err)
	require.False(t, got.Settled)
	require.Empty(t, env.bcast.channels)
}

func TestHandleMessageRedelivery(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	_, err := env.matches.Create(ctx, "m1", "Poli Galo", "FEA United", 1500, 1500)
	require.NoError(t, err)
	require.NoError(t, env.matches.Finish(ctx, "m1", oddsmath.ResultDraw, oddsmath.MatchStats{}))

	msg := finishedEvent(t, "m1", "DRAW")
	require.NoError(t, env.proc.HandleMessage(ctx, []byte("m1"), msg))
	require.NoError(t, env.proc.HandleMessage(ctx, []byte("m1"), msg))

	// só a primeira entrega dispara broadcast
	require.Len(t, env.bcast.channels, 1)
}

func TestHandleMessageBadPayload(t *testing.T) {
	env := newEnv(t)
	// mensagem inválida é descartada (iria pra DLQ), não derruba o loop
	err := env.proc.HandleMessage(context.Background(), nil, []byte("{nope"))
	require.NoError(t, err)
}
