package ws

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StartRedisSubscriber assina prefix+"*" e repassa cada mensagem para a sala
// do usuário extraído do nome do canal
func StartRedisSubscriber(ctx context.Context, r *redis.Client, prefix string, hub *Hub, log *zap.Logger) {
	sub := r.PSubscribe(ctx, prefix+"*")
	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg == nil {
					continue
				}
				route(hub, prefix, msg.Channel, msg.Payload, log)
			}
		}
	}()
}

func route(hub *Hub, prefix, channel, payload string, log *zap.Logger) {
	userID := strings.TrimPrefix(channel, prefix)
	if userID == "" || userID == channel {
		log.Warn("ws subscriber unexpected channel", zap.String("channel", channel))
		return
	}
	hub.Deliver(userID, []byte(payload))
}
