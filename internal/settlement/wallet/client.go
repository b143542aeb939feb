package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DepositRequest é o payload do /wallet/deposit da carteira espelho
type DepositRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref,omitempty"`
}

// Client espelha créditos de liquidação na carteira secundária
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(base, "/"),
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// Credit deposita o valor em centavos; external_ref carrega o bet id
// para a carteira descartar repetições
func (c *Client) Credit(ctx context.Context, userID string, amount decimal.Decimal, ref string) error {
	cents := amount.Shift(2).Round(0).IntPart()
	if cents <= 0 {
		return nil
	}
	body, err := json.Marshal(DepositRequest{UserID: userID, AmountCents: cents, ExternalRef: "settlement:" + ref})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wallet/deposit", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("wallet deposit http %d", res.StatusCode)
	}
	return nil
}
