package events

import "time"

// Evento emitido pelo settlement-worker quando uma aposta sai de "pending".
// Também é o payload de "bet:settled" na sala do usuário.
type BetSettled struct {
	MessageID  string    `json:"message_id"`
	UserID     string    `json:"user_id"`
	BetID      string    `json:"bet_id"`
	Result     string    `json:"result"` // "won" | "lost" | "void"
	Payout     string    `json:"payout"` // decimal em string, ex: "19.00"
	NewBalance string    `json:"new_balance,omitempty"`
	MatchName  string    `json:"match_name,omitempty"`
	Combo      bool      `json:"combo,omitempty"`
	SettledAt  time.Time `json:"settled_at"`
}
