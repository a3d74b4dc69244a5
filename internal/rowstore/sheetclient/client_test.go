package sheetclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/radieske/campus-toto/internal/rowstore"
	"github.com/radieske/campus-toto/internal/rowstore/sheetapi"
	"github.com/radieske/campus-toto/internal/rowstore/sheetclient"
)

func newTestPair(t *testing.T) (*sheetclient.Client, *rowstore.Memory) {
	t.Helper()
	mem := rowstore.NewMemory()
	srv := httptest.NewServer(sheetapi.New(mem).Router())
	t.Cleanup(srv.Close)
	return sheetclient.New(srv.URL), mem
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	cli, _ := newTestPair(t)

	require.NoError(t, cli.Validate(ctx))

	require.NoError(t, cli.AppendRow(ctx, rowstore.SheetUsers, rowstore.Row{
		rowstore.ColNickname: "ana",
		rowstore.ColBalance:  "3000",
	}))

	idx, row, err := cli.FindRow(ctx, rowstore.SheetUsers, rowstore.ColNickname, "ana")
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Equal(t, "3000", row[rowstore.ColBalance])

	require.NoError(t, cli.UpdateCell(ctx, rowstore.SheetUsers, 0, rowstore.ColBalance, "2500"))
	v, err := cli.ReadCell(ctx, rowstore.SheetUsers, 0, rowstore.ColBalance)
	require.NoError(t, err)
	require.Equal(t, "2500", v)

	rows, err := cli.GetAllRows(ctx, rowstore.SheetUsers)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestClientFindRowEscapesValue(t *testing.T) {
	ctx := context.Background()
	cli, _ := newTestPair(t)

	// nicknames e nomes de time vêm do usuário: espaço, '+', '&' e acento
	// precisam sobreviver à query da busca
	for _, nickname := range []string{"ana luiza", "c+b", "a&b=c", "joão#1"} {
		require.NoError(t, cli.AppendRow(ctx, rowstore.SheetUsers, rowstore.Row{
			rowstore.ColNickname: nickname,
			rowstore.ColBalance:  "3000",
		}))

		_, row, err := cli.FindRow(ctx, rowstore.SheetUsers, rowstore.ColNickname, nickname)
		require.NoErrorf(t, err, "nickname=%q", nickname)
		require.Equal(t, nickname, row[rowstore.ColNickname])
	}

	// "c b" não pode casar com "c+b"
	_, _, err := cli.FindRow(ctx, rowstore.SheetUsers, rowstore.ColNickname, "c b")
	require.ErrorIs(t, err, rowstore.ErrRowNotFound)
}

func TestClientNotFoundIsNotRetried(t *testing.T) {
	ctx := context.Background()
	cli, _ := newTestPair(t)

	_, _, err := cli.FindRow(ctx, rowstore.SheetUsers, rowstore.ColNickname, "ninguem")
	require.ErrorIs(t, err, rowstore.ErrRowNotFound)
}

func TestClientRetriesServerErrors(t *testing.T) {
	// as duas primeiras respostas falham, a terceira responde
	var calls atomic.Int32
	mem := rowstore.NewMemory()
	inner := sheetapi.New(mem).Router()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		inner.ServeHTTP(w, r)
	}))
	defer srv.Close()

	cli := sheetclient.New(srv.URL)
	rows, err := cli.GetAllRows(context.Background(), rowstore.SheetUsers)
	require.NoError(t, err)
	require.Empty(t, rows)
	require.EqualValues(t, 3, calls.Load())
}

func TestClientGivesUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cli := sheetclient.New(srv.URL)
	_, err := cli.GetAllRows(context.Background(), rowstore.SheetUsers)
	require.ErrorIs(t, err, rowstore.ErrUnavailable)
}

func TestClientValidateMissingColumn(t *testing.T) {
	// servidor devolve um header capado para simular planilha mal configurada
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"columns":["nickname"]}`))
	}))
	defer srv.Close()

	cli := sheetclient.New(srv.URL)
	err := cli.Validate(context.Background())
	require.ErrorIs(t, err, rowstore.ErrBadSchema)
}
