package rowstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckHeader(t *testing.T) {
	tests := []struct {
		name    string
		sheet   string
		header  []string
		wantErr bool
		errHint string
	}{
		{
			name:   "users completo",
			sheet:  SheetUsers,
			header: []string{ColNickname, ColBalance},
		},
		{
			name:   "ordem diferente nao importa",
			sheet:  SheetUsers,
			header: []string{ColBalance, ColNickname},
		},
		{
			name:   "colunas extras sao toleradas",
			sheet:  SheetBets,
			header: append([]string{"obs"}, Schema[SheetBets]...),
		},
		{
			name:    "matches sem is_settled",
			sheet:   SheetMatches,
			header:  Schema[SheetMatches][:len(Schema[SheetMatches])-1],
			wantErr: true,
			errHint: ColIsSettled,
		},
		{
			name:    "worksheet desconhecida",
			sheet:   "Ranking",
			header:  []string{"x"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckHeader(tt.sheet, tt.header)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrBadSchema)
			if tt.errHint != "" {
				// a mensagem precisa dizer qual coluna criar
				require.Contains(t, err.Error(), tt.errHint)
			}
		})
	}
}
