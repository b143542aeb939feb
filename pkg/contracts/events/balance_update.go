package events

// Payload de "balance:update" na sala do usuário
type BalanceUpdate struct {
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
	Balance   string `json:"balance"`
}

// Envelope publicado no canal Redis do usuário ("user:{id}")
type UserMessage struct {
	Event string `json:"event"` // "bet:settled" | "balance:update"
	Data  any    `json:"data"`
}

const (
	UserEventBetSettled    = "bet:settled"
	UserEventBalanceUpdate = "balance:update"
)
