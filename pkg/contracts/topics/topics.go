package topics

const (
	// Apostas
	BetPlaced = "bet_placed"

	// Partidas
	MatchFinished = "match_finished"
	MatchSettled  = "match_settled"

	// DLQs
	MatchFinishedDLQ = "match_finished_dlq"
)
