package events

import "time"

// Evento emitido pelo settlement-worker após liquidar uma partida.
type MatchSettled struct {
	MatchID    string    `json:"match_id"`
	Result     string    `json:"result"`
	Winners    int       `json:"winners"`
	PaidPoints int64     `json:"paid_points"`
	EloDelta   int       `json:"elo_delta"`
	Ts         time.Time `json:"ts"`
}
