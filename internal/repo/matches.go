package repo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/radieske/campus-toto/internal/rowstore"
	"github.com/radieske/campus-toto/pkg/oddsmath"
)

// Matches é o repositório de partidas. Odds ficam fixas na criação; o status
// muda para FINISHED por ação do admin (ou edição direta na planilha) e
// is_settled transiciona FALSE→TRUE uma única vez, pela liquidação.
type Matches struct {
	Store   rowstore.Store
	MaxOdds float64
}

func NewMatches(store rowstore.Store, maxOdds float64) *Matches {
	return &Matches{Store: store, MaxOdds: maxOdds}
}

// Create registra uma partida WAITING com odds calculadas dos ratings atuais.
// matchID vazio ganha um id gerado.
func (m *Matches) Create(ctx context.Context, matchID, home, away string, homeElo, awayElo int) (Match, error) {
	if matchID == "" {
		matchID = uuid.NewString()[:8]
	}
	if _, _, err := m.Store.FindRow(ctx, rowstore.SheetMatches, rowstore.ColMatchID, matchID); err == nil {
		return Match{}, fmt.Errorf("%w: match_id %q já existe", ErrBadRow, matchID)
	}

	h, d, a := oddsmath.AutoOdds(float64(homeElo), float64(awayElo), m.MaxOdds)
	row := rowstore.Row{
		rowstore.ColMatchID:   matchID,
		rowstore.ColHome:      home,
		rowstore.ColAway:      away,
		rowstore.ColHomeOdds:  formatOdds(h),
		rowstore.ColDrawOdds:  formatOdds(d),
		rowstore.ColAwayOdds:  formatOdds(a),
		rowstore.ColStatus:    StatusWaiting,
		rowstore.ColIsSettled: "FALSE",
	}
	if err := m.Store.AppendRow(ctx, rowstore.SheetMatches, row); err != nil {
		return Match{}, fmt.Errorf("create match %s: %w", matchID, err)
	}
	return Match{
		ID: matchID, Home: home, Away: away,
		HomeOdds: h, DrawOdds: d, AwayOdds: a,
		Status: StatusWaiting,
	}, nil
}

// Reprice recalcula as odds de uma partida ainda WAITING (re-registro).
func (m *Matches) Reprice(ctx context.Context, matchID string, homeElo, awayElo int) (Match, error) {
	idx, row, err := m.Store.FindRow(ctx, rowstore.SheetMatches, rowstore.ColMatchID, matchID)
	if err != nil {
		return Match{}, err
	}
	if row[rowstore.ColStatus] != StatusWaiting {
		return Match{}, ErrMatchNotOpen
	}

	h, d, a := oddsmath.AutoOdds(float64(homeElo), float64(awayElo), m.MaxOdds)
	for col, v := range map[string]string{
		rowstore.ColHomeOdds: formatOdds(h),
		rowstore.ColDrawOdds: formatOdds(d),
		rowstore.ColAwayOdds: formatOdds(a),
	} {
		if err := m.Store.UpdateCell(ctx, rowstore.SheetMatches, idx, col, v); err != nil {
			return Match{}, fmt.Errorf("reprice match %s: %w", matchID, err)
		}
	}
	return m.Get(ctx, matchID)
}

func (m *Matches) Get(ctx context.Context, matchID string) (Match, error) {
	_, row, err := m.Store.FindRow(ctx, rowstore.SheetMatches, rowstore.ColMatchID, matchID)
	if err != nil {
		return Match{}, err
	}
	return parseMatch(row)
}

func (m *Matches) List(ctx context.Context) ([]Match, error) {
	rows, err := m.Store.GetAllRows(ctx, rowstore.SheetMatches)
	if err != nil {
		return nil, err
	}
	out := make([]Match, 0, len(rows))
	for _, row := range rows {
		match, err := parseMatch(row)
		if err != nil {
			return nil, err
		}
		out = append(out, match)
	}
	return out, nil
}

// ListWaiting filtra as partidas abertas para aposta.
func (m *Matches) ListWaiting(ctx context.Context) ([]Match, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Match, 0, len(all))
	for _, match := range all {
		if match.Status == StatusWaiting {
			out = append(out, match)
		}
	}
	return out, nil
}

// Finish marca a partida como FINISHED com o resultado e as estatísticas de
// desempenho. Resultado só pode ser gravado junto com o encerramento.
func (m *Matches) Finish(ctx context.Context, matchID string, result oddsmath.Result, stats oddsmath.MatchStats) error {
	if !result.Valid() {
		return ErrInvalidChoice
	}
	idx, row, err := m.Store.FindRow(ctx, rowstore.SheetMatches, rowstore.ColMatchID, matchID)
	if err != nil {
		return err
	}
	settled, err := parseSettled(row)
	if err != nil {
		return err
	}
	if settled {
		return ErrAlreadySettled
	}

	cells := map[string]string{
		rowstore.ColStatus:   StatusFinished,
		rowstore.ColResult:   string(result),
		rowstore.ColHomeXG:   formatStat(stats.HomeXG),
		rowstore.ColAwayXG:   formatStat(stats.AwayXG),
		rowstore.ColHomePass: formatStat(stats.HomePasses),
		rowstore.ColAwayPass: formatStat(stats.AwayPasses),
		rowstore.ColHomePPDA: formatStat(stats.HomePPDA),
		rowstore.ColAwayPPDA: formatStat(stats.AwayPPDA),
	}
	for col, v := range cells {
		if err := m.Store.UpdateCell(ctx, rowstore.SheetMatches, idx, col, v); err != nil {
			return fmt.Errorf("finish match %s: %w", matchID, err)
		}
	}
	return nil
}

// MarkSettled faz a transição FALSE→TRUE de is_settled. Chamada uma vez por
// partida, ao final da liquidação.
func (m *Matches) MarkSettled(ctx context.Context, matchID string) error {
	idx, _, err := m.Store.FindRow(ctx, rowstore.SheetMatches, rowstore.ColMatchID, matchID)
	if err != nil {
		return err
	}
	return m.Store.UpdateCell(ctx, rowstore.SheetMatches, idx, rowstore.ColIsSettled, "TRUE")
}

func parseMatch(row rowstore.Row) (Match, error) {
	h, err := parseOdds(row, rowstore.ColHomeOdds)
	if err != nil {
		return Match{}, err
	}
	d, err := parseOdds(row, rowstore.ColDrawOdds)
	if err != nil {
		return Match{}, err
	}
	a, err := parseOdds(row, rowstore.ColAwayOdds)
	if err != nil {
		return Match{}, err
	}
	settled, err := parseSettled(row)
	if err != nil {
		return Match{}, err
	}
	result, err := parseResult(row)
	if err != nil {
		return Match{}, err
	}

	return Match{
		ID:       row[rowstore.ColMatchID],
		Home:     row[rowstore.ColHome],
		Away:     row[rowstore.ColAway],
		HomeOdds: h,
		DrawOdds: d,
		AwayOdds: a,
		Status:   row[rowstore.ColStatus],
		Result:   result,
		Settled:  settled,
		Stats: oddsmath.MatchStats{
			HomeXG:     parseStat(row, rowstore.ColHomeXG),
			AwayXG:     parseStat(row, rowstore.ColAwayXG),
			HomePasses: parseStat(row, rowstore.ColHomePass),
			AwayPasses: parseStat(row, rowstore.ColAwayPass),
			HomePPDA:   parseStat(row, rowstore.ColHomePPDA),
			AwayPPDA:   parseStat(row, rowstore.ColAwayPPDA),
		},
	}, nil
}

func formatStat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
