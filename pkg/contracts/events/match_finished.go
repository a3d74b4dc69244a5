package events

import "time"

// Evento publicado pelo admin ao encerrar uma partida na planilha.
// O settlement-worker consome este tópico para liquidar a partida.
type MatchFinished struct {
	MatchID string    `json:"match_id"`
	Result  string    `json:"result"` // "HOME" | "DRAW" | "AWAY"
	Ts      time.Time `json:"ts"`
}
