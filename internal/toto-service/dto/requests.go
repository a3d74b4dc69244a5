package dto

type PlaceBetRequest struct {
	Nickname string `json:"nickname"`
	MatchID  string `json:"matchId"`
	Choice   string `json:"choice"` // "HOME" | "DRAW" | "AWAY"
	Amount   int64  `json:"amount"`
}

type CreateMatchRequest struct {
	MatchID string `json:"matchId,omitempty"` // vazio gera id
	Home    string `json:"home"`
	Away    string `json:"away"`
}

type FinishMatchRequest struct {
	Result string `json:"result"` // "HOME" | "DRAW" | "AWAY"

	// Estatísticas de desempenho, opcionais (alimentam o bônus ELO)
	HomeXG     float64 `json:"h_xg,omitempty"`
	AwayXG     float64 `json:"a_xg,omitempty"`
	HomePasses float64 `json:"h_pass,omitempty"`
	AwayPasses float64 `json:"a_pass,omitempty"`
	HomePPDA   float64 `json:"h_ppda,omitempty"`
	AwayPPDA   float64 `json:"a_ppda,omitempty"`
}
