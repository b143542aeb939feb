package notify

import (
	"context"

	sharedkafka "github.com/radieske/bet-settlement-engine/internal/shared/kafka"
	"github.com/radieske/bet-settlement-engine/pkg/contracts/events"
)

// KafkaPublisher publica os eventos de liquidação para consumidores assíncronos
// (relatórios, auditoria). A chave é o user_id para manter a ordem por usuário.
type KafkaPublisher struct {
	Settled  sharedkafka.MessageWriter
	Balances sharedkafka.MessageWriter
}

func (k *KafkaPublisher) BetSettled(ctx context.Context, ev events.BetSettled) error {
	return sharedkafka.WriteJSON(ctx, k.Settled, ev.UserID, ev)
}

func (k *KafkaPublisher) BalanceUpdate(ctx context.Context, ev events.BalanceUpdate) error {
	if k.Balances == nil {
		return nil
	}
	return sharedkafka.WriteJSON(ctx, k.Balances, ev.UserID, ev)
}
