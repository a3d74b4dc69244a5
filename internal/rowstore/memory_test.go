package rowstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryAppendAndFind(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.AppendRow(ctx, SheetUsers, Row{ColNickname: "ana", ColBalance: "3000"}))
	require.NoError(t, m.AppendRow(ctx, SheetUsers, Row{ColNickname: "bruno", ColBalance: "3000"}))

	idx, row, err := m.FindRow(ctx, SheetUsers, ColNickname, "bruno")
	require.NoError(t, err)
	require.Equal(t, 1, idx)
	require.Equal(t, "3000", row[ColBalance])

	_, _, err = m.FindRow(ctx, SheetUsers, ColNickname, "carla")
	require.ErrorIs(t, err, ErrRowNotFound)
}

func TestMemoryFindReturnsFirstMatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.AppendRow(ctx, SheetBets, Row{ColNickname: "ana", ColMatchID: "M1"}))
	require.NoError(t, m.AppendRow(ctx, SheetBets, Row{ColNickname: "ana", ColMatchID: "M2"}))

	idx, row, err := m.FindRow(ctx, SheetBets, ColNickname, "ana")
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Equal(t, "M1", row[ColMatchID])
}

func TestMemoryCellRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.AppendRow(ctx, SheetUsers, Row{ColNickname: "ana", ColBalance: "3000"}))

	require.NoError(t, m.UpdateCell(ctx, SheetUsers, 0, ColBalance, "2500"))
	v, err := m.ReadCell(ctx, SheetUsers, 0, ColBalance)
	require.NoError(t, err)
	require.Equal(t, "2500", v)

	err = m.UpdateCell(ctx, SheetUsers, 7, ColBalance, "1")
	require.ErrorIs(t, err, ErrRowNotFound)
}

func TestMemoryRowsAreCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.AppendRow(ctx, SheetUsers, Row{ColNickname: "ana", ColBalance: "3000"}))

	rows, err := m.GetAllRows(ctx, SheetUsers)
	require.NoError(t, err)
	rows[0][ColBalance] = "0"

	v, err := m.ReadCell(ctx, SheetUsers, 0, ColBalance)
	require.NoError(t, err)
	require.Equal(t, "3000", v, "mutação no retorno não pode vazar para o store")
}

func TestMemoryUnknownSheet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := m.GetAllRows(ctx, "Ranking")
	require.ErrorIs(t, err, ErrBadSchema)
}
