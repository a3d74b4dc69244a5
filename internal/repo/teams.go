package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/radieske/campus-toto/internal/rowstore"
)

// Teams guarda o rating ELO de cada time. Só a liquidação escreve aqui.
type Teams struct {
	Store rowstore.Store
}

func NewTeams(store rowstore.Store) *Teams { return &Teams{Store: store} }

// Rating retorna o ELO do time, ou DefaultElo para time ainda sem linha.
func (t *Teams) Rating(ctx context.Context, name string) (int, error) {
	_, row, err := t.Store.FindRow(ctx, rowstore.SheetTeams, rowstore.ColTeamName, name)
	if errors.Is(err, rowstore.ErrRowNotFound) {
		return DefaultElo, nil
	}
	if err != nil {
		return 0, err
	}
	elo, err := parseInt(row, rowstore.ColElo)
	if err != nil {
		return 0, err
	}
	return int(elo), nil
}

// SetRating grava o novo ELO, criando a linha do time se for a primeira vez.
func (t *Teams) SetRating(ctx context.Context, name string, elo int) error {
	idx, _, err := t.Store.FindRow(ctx, rowstore.SheetTeams, rowstore.ColTeamName, name)
	if errors.Is(err, rowstore.ErrRowNotFound) {
		row := rowstore.Row{
			rowstore.ColTeamName: name,
			rowstore.ColElo:      formatInt(int64(elo)),
		}
		return t.Store.AppendRow(ctx, rowstore.SheetTeams, row)
	}
	if err != nil {
		return err
	}
	if err := t.Store.UpdateCell(ctx, rowstore.SheetTeams, idx, rowstore.ColElo, formatInt(int64(elo))); err != nil {
		return fmt.Errorf("set rating %s: %w", name, err)
	}
	return nil
}
