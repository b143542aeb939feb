package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/bet-settlement-engine/pkg/contracts/events"
)

// Publisher publica um payload num canal Pub/Sub
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type RedisBroadcaster struct {
	r *redis.Client
}

func NewRedisBroadcaster(r *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{r: r}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.r.Publish(ctx, channel, payload).Err()
}

// UserRooms entrega eventos na sala do usuário: canal Prefix + user_id.
// O hub de WebSocket assina o padrão Prefix + "*".
type UserRooms struct {
	Pub    Publisher
	Prefix string
}

func NewUserRooms(pub Publisher, prefix string) *UserRooms {
	if prefix == "" {
		prefix = "user:"
	}
	return &UserRooms{Pub: pub, Prefix: prefix}
}

// Channel retorna o canal da sala do usuário
func (u *UserRooms) Channel(userID string) string { return u.Prefix + userID }

func (u *UserRooms) BetSettled(ctx context.Context, ev events.BetSettled) error {
	return u.send(ctx, ev.UserID, events.UserEventBetSettled, ev)
}

func (u *UserRooms) BalanceUpdate(ctx context.Context, ev events.BalanceUpdate) error {
	return u.send(ctx, ev.UserID, events.UserEventBalanceUpdate, ev)
}

func (u *UserRooms) send(ctx context.Context, userID, event string, data any) error {
	b, err := json.Marshal(events.UserMessage{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event, err)
	}
	if err := u.Pub.Publish(ctx, u.Channel(userID), b); err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	return nil
}
