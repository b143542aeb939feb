package engine

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/bet-settlement-engine/internal/settlement/locator"
	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
	"github.com/radieske/bet-settlement-engine/pkg/contracts/events"
)

// Status é o estado persistido de uma aposta
type Status string

const (
	StatusPending Status = "pending"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
	StatusVoid    Status = "void"

	// StatusVoided é lido como sinônimo de void; nunca é gravado
	StatusVoided Status = "voided"
)

// ParseStatus normaliza o literal gravado, tratando "voided" como "void"
func ParseStatus(raw string) Status {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if s == StatusVoided {
		return StatusVoid
	}
	return s
}

// Terminal indica que não há transição saindo deste estado
func (s Status) Terminal() bool {
	switch ParseStatus(string(s)) {
	case StatusWon, StatusLost, StatusVoid:
		return true
	}
	return false
}

// TxType é o tipo da linha do ledger de transações
type TxType string

const (
	TxWin       TxType = "win"
	TxVoid      TxType = "void"
	TxComboWin  TxType = "combo_win"
	TxComboVoid TxType = "combo_void"
	TxRefund    TxType = "refund"
)

// Bet é a aposta como lida de bets
type Bet struct {
	ID              string
	UserID          string
	OperatorID      string
	MatchID         string
	MatchName       string
	SportName       string
	Selection       string
	Stake           decimal.Decimal
	Odds            decimal.Decimal
	PotentialReturn decimal.Decimal
	ActualReturn    *decimal.Decimal
	Status          Status
	ComboSelections []byte // JSON cru; nil para aposta simples
	CreatedAt       time.Time
	SettledAt       *time.Time
}

// IsCombo indica se a aposta tem pernas em combo_selections
func (b Bet) IsCombo() bool {
	raw := bytes.TrimSpace(b.ComboSelections)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// Settlement é a decisão aplicada numa única transação do banco
type Settlement struct {
	Status          Status
	ActualReturn    decimal.Decimal
	Credit          decimal.Decimal // zero não movimenta carteira
	TxType          TxType
	Description     string
	ComboSelections []byte // pernas re-serializadas, gravadas junto quando informadas
	SettledAt       time.Time
}

// Decision recebe a aposta re-lida com lock e devolve o que aplicar.
// ok=false aborta sem alterar nada.
type Decision func(current Bet) (s Settlement, ok bool, err error)

// SettleResult descreve o que a transação efetivou
type SettleResult struct {
	Bet           Bet // estado re-lido antes da alteração
	Applied       Settlement
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// Store é a persistência consumida pelo motor
type Store interface {
	ListPendingBets(ctx context.Context) ([]Bet, error)
	// SettleBet re-lê a aposta com lock, retorna ErrNotPending se ela já saiu de pending,
	// aplica a decisão, credita a carteira e grava o ledger na mesma transação.
	SettleBet(ctx context.Context, betID string, decide Decision) (SettleResult, error)
	UpdateComboSelections(ctx context.Context, betID string, legs []byte) error
	RecomputeOperatorRevenue(ctx context.Context, operatorID string) (decimal.Decimal, error)
}

// Finder localiza partidas no feed (locator.Searcher implementa)
type Finder interface {
	History(ctx context.Context, sport parser.Sport) []parser.Event
	Find(ctx context.Context, t locator.Target, idx *locator.Index) *parser.Event
}

// Notifier entrega eventos em tempo real; falhas são só logadas
type Notifier interface {
	BetSettled(ctx context.Context, ev events.BetSettled) error
	BalanceUpdate(ctx context.Context, ev events.BalanceUpdate) error
}

// WalletMirror espelha créditos numa carteira secundária (best-effort)
type WalletMirror interface {
	Credit(ctx context.Context, userID string, amount decimal.Decimal, ref string) error
}
