package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCredit(t *testing.T) {
	var got DepositRequest
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/wallet/deposit" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	if err := c.Credit(context.Background(), "u1", decimal.RequireFromString("19.005"), "b1"); err != nil {
		t.Fatal(err)
	}
	if got.UserID != "u1" || got.AmountCents != 1901 || got.ExternalRef != "settlement:b1" {
		t.Fatalf("request = %+v", got)
	}

	if err := c.Credit(context.Background(), "u1", decimal.Zero, "b2"); err != nil || calls != 1 {
		t.Fatalf("zero credit must not call the wallet (calls=%d err=%v)", calls, err)
	}
}

func TestCredit_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := New(srv.URL).Credit(context.Background(), "u1", decimal.NewFromInt(5), "b1"); err == nil {
		t.Fatal("expected error on 500")
	}
}
