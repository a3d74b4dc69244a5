package rowstore

import "fmt"

// Colunas das worksheets. Appends posicionais dos backends seguem esta ordem;
// o resto do código só enxerga os nomes.
const (
	ColNickname  = "nickname"
	ColBalance   = "balance"
	ColMatchID   = "match_id"
	ColHome      = "home"
	ColAway      = "away"
	ColHomeOdds  = "home_odds"
	ColDrawOdds  = "draw_odds"
	ColAwayOdds  = "away_odds"
	ColStatus    = "status"
	ColResult    = "result"
	ColHomeXG    = "h_xg"
	ColAwayXG    = "a_xg"
	ColHomePass  = "h_pass"
	ColAwayPass  = "a_pass"
	ColHomePPDA  = "h_ppda"
	ColAwayPPDA  = "a_ppda"
	ColIsSettled = "is_settled"
	ColChoice    = "choice"
	ColAmount    = "amount"
	ColTimestamp = "timestamp"
	ColTeamName  = "team_name"
	ColElo       = "elo"
)

// Schema mapeia cada worksheet à sua lista ordenada de colunas.
var Schema = map[string][]string{
	SheetUsers: {ColNickname, ColBalance},
	SheetMatches: {
		ColMatchID, ColHome, ColAway,
		ColHomeOdds, ColDrawOdds, ColAwayOdds,
		ColStatus, ColResult,
		ColHomeXG, ColAwayXG, ColHomePass, ColAwayPass, ColHomePPDA, ColAwayPPDA,
		ColIsSettled,
	},
	SheetBets:  {ColNickname, ColMatchID, ColChoice, ColAmount, ColTimestamp},
	SheetTeams: {ColTeamName, ColElo},
}

// Columns retorna a ordem de colunas de uma worksheet conhecida.
func Columns(sheet string) ([]string, error) {
	cols, ok := Schema[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: worksheet %q desconhecida", ErrBadSchema, sheet)
	}
	return cols, nil
}

// CheckHeader compara o header real de uma worksheet com o Schema. A mensagem
// de erro diz exatamente qual coluna criar, já que o conserto é manual na
// planilha.
func CheckHeader(sheet string, header []string) error {
	want, err := Columns(sheet)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	for _, col := range want {
		if !have[col] {
			return fmt.Errorf("%w: adicione a coluna %q na worksheet %q da planilha",
				ErrBadSchema, col, sheet)
		}
	}
	return nil
}
