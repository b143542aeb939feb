package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-engine/internal/settlement/locator"
	"github.com/radieske/bet-settlement-engine/internal/settlement/outcome"
	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
	"github.com/radieske/bet-settlement-engine/pkg/contracts/events"
)

// settleSingle aplica o resultado de uma aposta simples numa transação.
// A decisão é tomada sobre a linha re-lida, não sobre a lista do início do ciclo.
func (e *Engine) settleSingle(ctx context.Context, b Bet, ev parser.Event, res outcome.Resolution, voidTx TxType) (Status, string, error) {
	now := e.now()
	decide := func(cur Bet) (Settlement, bool, error) {
		if cur.Status != StatusPending {
			return Settlement{}, false, ErrNotPending
		}
		if res.Cancelled {
			return Settlement{
				Status:       StatusVoid,
				ActualReturn: cur.Stake,
				Credit:       cur.Stake,
				TxType:       voidTx,
				Description:  fmt.Sprintf("Refund: %s (%s)", cur.MatchName, ev.Status),
				SettledAt:    now,
			}, true, nil
		}
		won, err := SelectionWins(cur.Selection, ev, res.Winner)
		if err != nil {
			return Settlement{}, false, err
		}
		if !won {
			return Settlement{Status: StatusLost, ActualReturn: decimal.Zero, SettledAt: now}, true, nil
		}
		return Settlement{
			Status:       StatusWon,
			ActualReturn: cur.PotentialReturn,
			Credit:       cur.PotentialReturn,
			TxType:       TxWin,
			Description:  fmt.Sprintf("Bet won: %s (%s)", cur.MatchName, cur.Selection),
			SettledAt:    now,
		}, true, nil
	}

	out, err := e.Store.SettleBet(ctx, b.ID, decide)
	if err != nil {
		if errors.Is(err, ErrNotPending) {
			e.Log.Debug("bet already settled", zap.String("bet_id", b.ID))
			return "", "", err
		}
		stage := StageSettle
		if errors.Is(err, ErrUnknownSelection) {
			stage = StageSelection
		}
		return "", "", &SettlementError{Stage: stage, BetID: b.ID, Match: b.MatchName, Err: err}
	}

	e.Log.Info("bet settled",
		zap.String("bet_id", b.ID),
		zap.String("user_id", out.Bet.UserID),
		zap.String("match", b.MatchName),
		zap.String("result", string(out.Applied.Status)),
		zap.String("payout", out.Applied.ActualReturn.StringFixed(2)),
	)
	e.afterCommit(ctx, out, false)
	return out.Applied.Status, out.Bet.OperatorID, nil
}

type comboResult struct {
	status    Status // pending enquanto houver perna aberta
	updated   bool   // pernas re-serializadas neste ciclo
	skipped   bool
	unmatched int
	operator  string
}

// settleCombo resolve cada perna aberta no escopo do seu esporte. Com todas
// as pernas liquidadas, aplica o status final e a carteira uma única vez.
func (e *Engine) settleCombo(ctx context.Context, b Bet, legs []ComboSelection, idx map[parser.Sport]*locator.Index) (res comboResult, err error) {
	res.status = StatusPending
	defer func() {
		if r := recover(); r != nil {
			err = &SettlementError{Stage: StagePanic, BetID: b.ID, Err: fmt.Errorf("%v", r)}
		}
	}()

	now := e.now()
	changed := false
	var legErr error // primeira perna que não pôde ser decidida; as demais seguem
	for i := range legs {
		leg := &legs[i]
		if leg.Settled {
			continue
		}
		sport := locator.SportFor(legSport(*leg, i, b.SportName), leg.MatchName)
		t := locator.Target{
			MatchID:   string(leg.MatchID),
			MatchName: leg.MatchName,
			Sport:     sport,
			CreatedAt: b.CreatedAt,
		}
		ev := e.Finder.Find(ctx, t, idx[sport])
		if ev == nil {
			e.Log.Warn("combo leg match not found", zap.String("bet_id", b.ID), zap.String("leg", legLabel(i, *leg)))
			if e.OnUnmatched != nil {
				e.OnUnmatched()
			}
			res.unmatched++
			continue
		}
		r := outcome.Resolve(*ev)
		switch {
		case r.Cancelled:
			leg.Result = LegVoid
		case r.Completed && r.Winner != outcome.WinnerNone:
			won, serr := SelectionWins(leg.Selection, *ev, r.Winner)
			if serr != nil {
				if legErr == nil {
					legErr = &SettlementError{Stage: StageSelection, BetID: b.ID, Match: legLabel(i, *leg), Err: serr}
				}
				continue
			}
			leg.Result = LegLost
			if won {
				leg.Result = LegWon
			}
		default:
			continue
		}
		settledAt := now
		leg.Settled, leg.SettledAt = true, &settledAt
		changed = true
	}

	final := ComboStatus(legs)
	if !changed && final == StatusPending {
		if legErr != nil {
			return res, legErr
		}
		res.skipped = true
		return res, nil
	}

	raw, err := json.Marshal(legs)
	if err != nil {
		return res, &SettlementError{Stage: StageComboUpdate, BetID: b.ID, Err: err}
	}

	// perna com erro fica aberta, então o combo segue pendente; o que já foi
	// resolvido nesta passada é gravado mesmo assim
	if final == StatusPending {
		if err := e.Store.UpdateComboSelections(ctx, b.ID, raw); err != nil {
			return res, &SettlementError{Stage: StageComboUpdate, BetID: b.ID, Err: err}
		}
		res.updated = true
		return res, legErr
	}

	decide := func(cur Bet) (Settlement, bool, error) {
		if cur.Status != StatusPending {
			return Settlement{}, false, ErrNotPending
		}
		s := Settlement{Status: final, ComboSelections: raw, SettledAt: now, ActualReturn: decimal.Zero}
		switch final {
		case StatusWon:
			s.ActualReturn, s.Credit, s.TxType = cur.PotentialReturn, cur.PotentialReturn, TxComboWin
			s.Description = fmt.Sprintf("Combo won: %d legs", len(legs))
		case StatusVoid:
			s.ActualReturn, s.Credit, s.TxType = cur.Stake, cur.Stake, TxComboVoid
			s.Description = fmt.Sprintf("Combo void: %d legs", len(legs))
		}
		return s, true, nil
	}
	out, err := e.Store.SettleBet(ctx, b.ID, decide)
	if errors.Is(err, ErrNotPending) {
		res.skipped = true
		return res, nil
	}
	if err != nil {
		return res, &SettlementError{Stage: StageSettle, BetID: b.ID, Err: err}
	}

	res.status, res.updated, res.operator = out.Applied.Status, true, out.Bet.OperatorID
	e.Log.Info("combo settled",
		zap.String("bet_id", b.ID),
		zap.String("user_id", out.Bet.UserID),
		zap.String("result", string(out.Applied.Status)),
		zap.Int("legs", len(legs)),
	)
	e.afterCommit(ctx, out, true)
	return res, nil
}

// afterCommit roda os efeitos best-effort depois do commit: espelho de carteira
// e notificações. Nenhuma falha aqui desfaz a liquidação.
func (e *Engine) afterCommit(ctx context.Context, out SettleResult, combo bool) {
	if e.OnSettled != nil {
		e.OnSettled(out.Applied.Status)
	}
	credited := out.Applied.Credit.IsPositive()

	if credited && e.Wallet != nil {
		if err := e.Wallet.Credit(ctx, out.Bet.UserID, out.Applied.Credit, out.Bet.ID); err != nil {
			e.Log.Warn("wallet mirror credit failed", zap.String("bet_id", out.Bet.ID), zap.Error(err))
		}
	}
	if e.Notifier == nil {
		return
	}

	nctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	settled := events.BetSettled{
		MessageID: uuid.NewString(),
		UserID:    out.Bet.UserID,
		BetID:     out.Bet.ID,
		Result:    string(out.Applied.Status),
		Payout:    out.Applied.ActualReturn.StringFixed(2),
		MatchName: out.Bet.MatchName,
		Combo:     combo,
		SettledAt: out.Applied.SettledAt,
	}
	if credited {
		settled.NewBalance = out.BalanceAfter.StringFixed(2)
	}
	if err := e.Notifier.BetSettled(nctx, settled); err != nil {
		e.Log.Warn("bet settled notification failed", zap.String("bet_id", out.Bet.ID), zap.Error(err))
	}
	if credited {
		bu := events.BalanceUpdate{MessageID: uuid.NewString(), UserID: out.Bet.UserID, Balance: out.BalanceAfter.StringFixed(2)}
		if err := e.Notifier.BalanceUpdate(nctx, bu); err != nil {
			e.Log.Warn("balance update notification failed", zap.String("user_id", out.Bet.UserID), zap.Error(err))
		}
	}
}
