package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
)

const maxBodyBytes = 16 << 20

// Client consulta o provedor de resultados esportivos
type Client struct {
	BaseURL  string
	Token    string
	HTTP     *http.Client
	Cache    Cache         // opcional; só endpoints históricos são cacheados
	CacheTTL time.Duration // TTL das respostas históricas
	Log      *zap.Logger
	Now      func() time.Time // relógio das chaves de cache; nil usa time.Now

	// OnFetch é chamado a cada requisição (métricas): result = "ok" | "cache" | "error"
	OnFetch func(sport parser.Sport, result string)
}

// New cria um cliente com timeout curto por requisição
func New(baseURL, token string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
		Log:     log,
	}
}

// URL monta {base}/{token}/{namespace}/{endpoint}
func (c *Client) URL(sport parser.Sport, ep Endpoint) string {
	return fmt.Sprintf("%s/%s/%s/%s", c.BaseURL, c.Token, Namespace(sport), ep)
}

// Fetch busca e decodifica um endpoint do provedor em mapas aninhados
func (c *Client) Fetch(ctx context.Context, sport parser.Sport, ep Endpoint) (any, error) {
	ck := key(Namespace(sport), ep, c.now())
	if c.Cache != nil && ep.Cacheable() {
		if b, ok, err := c.Cache.Get(ctx, ck); err != nil {
			c.warn("feed cache get failed", zap.String("key", ck), zap.Error(err))
		} else if ok {
			if v, derr := Decode(b); derr == nil {
				c.hook(sport, "cache")
				return v, nil
			}
		}
	}

	body, err := c.get(ctx, c.URL(sport, ep))
	if err != nil {
		c.hook(sport, "error")
		return nil, err
	}
	v, err := Decode(body)
	if err != nil {
		c.hook(sport, "error")
		return nil, fmt.Errorf("decode %s/%s: %w", Namespace(sport), ep, err)
	}
	c.hook(sport, "ok")

	if c.Cache != nil && ep.Cacheable() {
		if err := c.Cache.Set(ctx, ck, body, c.CacheTTL); err != nil {
			c.warn("feed cache set failed", zap.String("key", ck), zap.Error(err))
		}
	}
	return v, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("feed http %d", res.StatusCode)
	}
	return io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Client) hook(sport parser.Sport, result string) {
	if c.OnFetch != nil {
		c.OnFetch(sport, result)
	}
}

func (c *Client) warn(msg string, fields ...zap.Field) {
	if c.Log != nil {
		c.Log.Warn(msg, fields...)
	}
}
