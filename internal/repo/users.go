package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/radieske/campus-toto/internal/rowstore"
)

// Users é o repositório de jogadores: nickname único, saldo em pontos.
type Users struct {
	Store           rowstore.Store
	StartingBalance int64
}

func NewUsers(store rowstore.Store, startingBalance int64) *Users {
	return &Users{Store: store, StartingBalance: startingBalance}
}

// GetOrCreate busca o jogador pelo nickname; se não existir, registra com o
// saldo inicial. Retorna created=true no primeiro cadastro.
func (u *Users) GetOrCreate(ctx context.Context, nickname string) (User, bool, error) {
	user, err := u.Get(ctx, nickname)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, rowstore.ErrRowNotFound) {
		return User{}, false, err
	}

	row := rowstore.Row{
		rowstore.ColNickname: nickname,
		rowstore.ColBalance:  formatInt(u.StartingBalance),
	}
	if err := u.Store.AppendRow(ctx, rowstore.SheetUsers, row); err != nil {
		return User{}, false, fmt.Errorf("register user %s: %w", nickname, err)
	}
	return User{Nickname: nickname, Balance: u.StartingBalance}, true, nil
}

func (u *Users) Get(ctx context.Context, nickname string) (User, error) {
	_, row, err := u.Store.FindRow(ctx, rowstore.SheetUsers, rowstore.ColNickname, nickname)
	if err != nil {
		return User{}, err
	}
	balance, err := parseInt(row, rowstore.ColBalance)
	if err != nil {
		return User{}, err
	}
	return User{Nickname: nickname, Balance: balance}, nil
}

// AdjustBalance aplica um delta (negativo debita) via read-modify-write na
// célula de saldo. Não há CAS na planilha: duas escritas simultâneas podem se
// perder, limitação aceita do jogo. Débito que deixaria o saldo negativo é
// recusado sem escrever nada.
func (u *Users) AdjustBalance(ctx context.Context, nickname string, delta int64) (int64, error) {
	idx, _, err := u.Store.FindRow(ctx, rowstore.SheetUsers, rowstore.ColNickname, nickname)
	if err != nil {
		return 0, err
	}

	raw, err := u.Store.ReadCell(ctx, rowstore.SheetUsers, idx, rowstore.ColBalance)
	if err != nil {
		return 0, err
	}
	current, err := parseInt(rowstore.Row{rowstore.ColBalance: raw}, rowstore.ColBalance)
	if err != nil {
		return 0, err
	}

	next := current + delta
	if next < 0 {
		return current, ErrInsufficientFunds
	}
	if err := u.Store.UpdateCell(ctx, rowstore.SheetUsers, idx, rowstore.ColBalance, formatInt(next)); err != nil {
		return current, fmt.Errorf("update balance %s: %w", nickname, err)
	}
	return next, nil
}
