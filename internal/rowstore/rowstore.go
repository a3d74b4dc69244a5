// Package rowstore define o contrato de acesso à planilha externa que guarda
// todo o estado durável do jogo. Os serviços não mantêm cópia autoritativa:
// qualquer cache local é espelho descartável, a planilha é a fonte da verdade.
package rowstore

import (
	"context"
	"errors"
)

// Nomes das worksheets da planilha.
const (
	SheetUsers   = "Users"
	SheetMatches = "Matches"
	SheetBets    = "Bets"
	SheetTeams   = "Teams"
)

var (
	// ErrRowNotFound indica que a chave buscada não existe na worksheet.
	ErrRowNotFound = errors.New("row not found")

	// ErrUnavailable indica falha de transporte/auth com a planilha após as
	// tentativas de retry. Fatal para a interação corrente, não para o processo.
	ErrUnavailable = errors.New("row store unavailable")

	// ErrBadSchema indica worksheet ou coluna esperada ausente. Erro de
	// configuração: deve ser mostrado ao operador com a coluna que falta.
	ErrBadSchema = errors.New("row store schema mismatch")
)

// Row é um registro da planilha com campos nomeados. A ordem posicional das
// colunas é detalhe de cada backend, nunca dos chamadores.
type Row map[string]string

// Store é a única dependência que a lógica do jogo tem do ambiente.
// Índices de linha são 0-based sobre as linhas de dados (header excluído).
type Store interface {
	// Validate confere no startup se as worksheets e colunas esperadas existem.
	Validate(ctx context.Context) error

	GetAllRows(ctx context.Context, sheet string) ([]Row, error)

	// FindRow retorna a primeira linha cuja coluna tem o valor dado,
	// ou ErrRowNotFound.
	FindRow(ctx context.Context, sheet, column, value string) (int, Row, error)

	ReadCell(ctx context.Context, sheet string, index int, column string) (string, error)
	UpdateCell(ctx context.Context, sheet string, index int, column, value string) error
	AppendRow(ctx context.Context, sheet string, row Row) error
}
