package events

type BetPlaced struct {
	BetID    string  `json:"bet_id"`
	Nickname string  `json:"nickname"`
	MatchID  string  `json:"match_id"`
	Choice   string  `json:"choice"` // "HOME" | "DRAW" | "AWAY"
	Amount   int64   `json:"amount"`
	Odds     float64 `json:"odds"` // odd travada no momento da aposta
	TsUnixMs int64   `json:"ts_unix_ms"`
}
