package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/radieske/bet-settlement-engine/internal/settlement/feed"
	"github.com/radieske/bet-settlement-engine/internal/settlement/locator"
	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
	"github.com/radieske/bet-settlement-engine/pkg/contracts/events"
)

type txRow struct {
	UserID, BetID string
	Amount        decimal.Decimal
	Type          TxType
	Before, After decimal.Decimal
}

// memStore guarda apostas, saldos e ledger em memória
type memStore struct {
	mu       sync.Mutex
	bets     map[string]*Bet
	order    []string
	balances map[string]decimal.Decimal
	txs      []txRow
	revenue  map[string]int
	failOn   map[string]error // betID -> erro no SettleBet
	listErr  error
}

func newMemStore(bets ...Bet) *memStore {
	s := &memStore{
		bets:     map[string]*Bet{},
		balances: map[string]decimal.Decimal{},
		revenue:  map[string]int{},
		failOn:   map[string]error{},
	}
	for i := range bets {
		b := bets[i]
		s.bets[b.ID] = &b
		s.order = append(s.order, b.ID)
		if _, ok := s.balances[b.UserID]; !ok {
			s.balances[b.UserID] = decimal.NewFromInt(100)
		}
	}
	return s
}

func (s *memStore) ListPendingBets(context.Context) ([]Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []Bet
	for _, id := range s.order {
		if b := s.bets[id]; ParseStatus(string(b.Status)) == StatusPending {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *memStore) SettleBet(_ context.Context, betID string, decide Decision) (SettleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOn[betID]; err != nil {
		return SettleResult{}, err
	}
	b, ok := s.bets[betID]
	if !ok {
		return SettleResult{}, errors.New("bet not found")
	}
	cur := *b
	cur.Status = ParseStatus(string(cur.Status))
	if cur.Status != StatusPending {
		return SettleResult{}, ErrNotPending
	}
	st, ok, err := decide(cur)
	if err != nil {
		return SettleResult{}, err
	}
	if !ok {
		return SettleResult{}, ErrNotPending
	}
	before := s.balances[cur.UserID]
	after := before.Add(st.Credit)
	b.Status = st.Status
	ar := st.ActualReturn
	b.ActualReturn = &ar
	at := st.SettledAt
	b.SettledAt = &at
	if st.ComboSelections != nil {
		b.ComboSelections = st.ComboSelections
	}
	if st.Credit.IsPositive() {
		s.balances[cur.UserID] = after
		s.txs = append(s.txs, txRow{UserID: cur.UserID, BetID: cur.ID, Amount: st.Credit, Type: st.TxType, Before: before, After: after})
	}
	return SettleResult{Bet: cur, Applied: st, BalanceBefore: before, BalanceAfter: after}, nil
}

func (s *memStore) UpdateComboSelections(_ context.Context, betID string, legs []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bets[betID].ComboSelections = legs
	return nil
}

func (s *memStore) RecomputeOperatorRevenue(_ context.Context, operatorID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revenue[operatorID]++
	return decimal.Zero, nil
}

func (s *memStore) bet(id string) Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.bets[id]
}

func (s *memStore) balance(user string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[user]
}

// fakeFeed responde payloads por esporte e endpoint
type fakeFeed struct {
	mu       sync.Mutex
	payloads map[parser.Sport]map[feed.Endpoint]any
	calls    int
}

func (f *fakeFeed) Fetch(_ context.Context, sport parser.Sport, ep feed.Endpoint) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if p, ok := f.payloads[sport][ep]; ok {
		return p, nil
	}
	return map[string]any{"matches": []any{}}, nil
}

func matches(ms ...map[string]any) map[string]any {
	list := make([]any, len(ms))
	for i, m := range ms {
		list[i] = m
	}
	return map[string]any{"matches": list}
}

type recNotifier struct {
	mu       sync.Mutex
	settled  []events.BetSettled
	balances []events.BalanceUpdate
	err      error
}

func (n *recNotifier) BetSettled(_ context.Context, ev events.BetSettled) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.settled = append(n.settled, ev)
	return n.err
}

func (n *recNotifier) BalanceUpdate(_ context.Context, ev events.BalanceUpdate) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.balances = append(n.balances, ev)
	return n.err
}

type recWallet struct {
	credits []decimal.Decimal
	err     error
}

func (w *recWallet) Credit(_ context.Context, _ string, amount decimal.Decimal, _ string) error {
	w.credits = append(w.credits, amount)
	return w.err
}

func newTestEngine(store Store, f *fakeFeed) (*Engine, *recNotifier, *recWallet) {
	n, w := &recNotifier{}, &recWallet{}
	e := New(store, locator.NewSearcher(f, 7, nil), nil)
	e.Notifier, e.Wallet = n, w
	return e, n, w
}
