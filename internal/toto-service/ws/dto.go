package ws

// ClientMsg é a mensagem recebida do cliente WebSocket.
// Type: subscribe | unsubscribe | ping. MatchID obrigatório nos dois primeiros.
type ClientMsg struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
}
