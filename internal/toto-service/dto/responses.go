package dto

import "time"

type UserResponse struct {
	Nickname string `json:"nickname"`
	Balance  int64  `json:"balance"`
	Created  bool   `json:"created,omitempty"` // true no primeiro cadastro
}

type MatchResponse struct {
	MatchID  string  `json:"matchId"`
	Home     string  `json:"home"`
	Away     string  `json:"away"`
	HomeOdds float64 `json:"home_odds"`
	DrawOdds float64 `json:"draw_odds"`
	AwayOdds float64 `json:"away_odds"`
	Status   string  `json:"status"`
	Result   string  `json:"result,omitempty"`
	Settled  bool    `json:"is_settled"`
}

type PlaceBetResponse struct {
	BetID      string `json:"betId"`
	NewBalance int64  `json:"new_balance"`
}

type BetResponse struct {
	MatchID   string    `json:"matchId"`
	Choice    string    `json:"choice"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

type SweepResponse struct {
	Settled int `json:"settled"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
