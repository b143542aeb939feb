package feed

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache guarda corpos brutos de respostas do provedor
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// RedisCache encapsula o cache de respostas do feed no Redis
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// key gera a chave Redis de uma resposta do feed. "d-1" muda de dia à meia-noite
// UTC, então a chave carrega a data absoluta que o endpoint representa.
func key(namespace string, ep Endpoint, now time.Time) string {
	k := "feed:" + namespace + ":" + string(ep)
	if n, ok := ep.DaysAgo(); ok {
		k += ":" + now.UTC().AddDate(0, 0, -n).Format("2006-01-02")
	}
	return k
}

// Get retorna o corpo em cache; (nil, false, nil) quando ausente
func (r *RedisCache) Get(ctx context.Context, k string) ([]byte, bool, error) {
	b, err := r.Client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set armazena o corpo no Redis; ttl zero usa o TTL padrão do cache
func (r *RedisCache) Set(ctx context.Context, k string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.TTL
	}
	return r.Client.Set(ctx, k, body, ttl).Err()
}
