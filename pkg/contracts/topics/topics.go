package topics

const (
	// Liquidação
	BetSettled     = "bet_settled"
	BalanceUpdates = "balance_updates"
)
