package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-engine/internal/settlement/locator"
	"github.com/radieske/bet-settlement-engine/internal/settlement/outcome"
	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
)

// Engine orquestra um ciclo de liquidação
type Engine struct {
	Store    Store
	Finder   Finder
	Notifier Notifier     // opcional
	Wallet   WalletMirror // opcional
	Log      *zap.Logger
	Now      func() time.Time

	// Hooks para métricas
	OnSettled   func(result Status)
	OnFailure   func(stage string)
	OnUnmatched func()
}

// New cria o motor com relógio real e logger no-op se nil
func New(store Store, finder Finder, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{Store: store, Finder: finder, Log: log, Now: time.Now}
}

// CycleReport agrega o resultado de cada unidade de trabalho do ciclo
type CycleReport struct {
	ID            string
	StartedAt     time.Time
	Duration      time.Duration
	Pending       int
	Singles       int
	Combos        int
	Settled       int // won + lost
	Won           int
	Lost          int
	Voided        int
	Failed        int
	Skipped       int
	Unmatched     int
	CombosUpdated int
	Operators     int
	Errors        []error
}

// GroupResult é o resultado de um grupo de apostas simples da mesma partida
type GroupResult struct {
	MatchName string
	EventID   string
	Found     bool
	Completed bool
	Cancelled bool
	Winner    outcome.Winner
	Won       int
	Lost      int
	Voided    int
	Skipped   int
	Failed    int
	Errors    []error

	operators map[string]struct{}
}

type group struct {
	name string
	bets []Bet
}

// CheckForCompletedMatches executa um ciclo completo. Nada dentro do ciclo
// propaga erro para quem chama: falhas ficam no relatório.
func (e *Engine) CheckForCompletedMatches(ctx context.Context) CycleReport {
	rep := CycleReport{ID: uuid.NewString(), StartedAt: e.now()}
	log := e.Log.With(zap.String("cycle_id", rep.ID))

	bets, err := e.Store.ListPendingBets(ctx)
	if err != nil {
		e.fail(&rep.Errors, &SettlementError{Stage: StageList, Err: err})
		rep.Failed++
		rep.Duration = e.now().Sub(rep.StartedAt)
		return rep
	}
	rep.Pending = len(bets)

	var singles, combos []Bet
	for _, b := range bets {
		if b.IsCombo() {
			combos = append(combos, b)
		} else {
			singles = append(singles, b)
		}
	}
	rep.Singles, rep.Combos = len(singles), len(combos)
	if len(bets) == 0 {
		rep.Duration = e.now().Sub(rep.StartedAt)
		return rep
	}

	// legs malformados são descartados aqui e não contam para os esportes
	parsed := make(map[string][]ComboSelection, len(combos))
	var validCombos []Bet
	for _, b := range combos {
		legs, err := ParseLegs(b.ComboSelections)
		if err != nil {
			e.fail(&rep.Errors, &SettlementError{Stage: StageComboParse, BetID: b.ID, Err: err})
			rep.Skipped++
			continue
		}
		parsed[b.ID] = legs
		validCombos = append(validCombos, b)
	}

	idx := e.loadIndexes(ctx, sportsFor(singles, validCombos, parsed))

	operators := map[string]struct{}{}
	for _, g := range groupByMatch(singles) {
		gr := e.settleGroup(ctx, g, idx, TxVoid)
		rep.absorb(gr)
		for op := range gr.operators {
			operators[op] = struct{}{}
		}
	}

	for _, b := range validCombos {
		res, err := e.settleCombo(ctx, b, parsed[b.ID], idx)
		if res.updated {
			rep.CombosUpdated++
		}
		rep.Unmatched += res.unmatched
		if err != nil {
			e.fail(&rep.Errors, err)
			rep.Failed++
			continue
		}
		switch res.status {
		case StatusWon:
			rep.Won++
			rep.Settled++
		case StatusLost:
			rep.Lost++
			rep.Settled++
		case StatusVoid:
			rep.Voided++
		}
		if res.skipped {
			rep.Skipped++
		}
		if res.status.Terminal() && res.operator != "" {
			operators[res.operator] = struct{}{}
		}
	}

	rep.Operators = e.recomputeRevenue(ctx, operators, &rep.Errors, &rep.Failed)
	rep.Duration = e.now().Sub(rep.StartedAt)

	log.Info("settlement cycle finished",
		zap.Int("pending", rep.Pending),
		zap.Int("settled", rep.Settled),
		zap.Int("voided", rep.Voided),
		zap.Int("failed", rep.Failed),
		zap.Int("skipped", rep.Skipped),
		zap.Int("unmatched", rep.Unmatched),
		zap.Int("combos_updated", rep.CombosUpdated),
		zap.Duration("duration", rep.Duration),
	)
	return rep
}

// ForceSettleMatch liquida fora do ciclo as apostas simples pendentes de uma partida.
// Partidas canceladas devolvem a stake como refund.
func (e *Engine) ForceSettleMatch(ctx context.Context, matchName string) (GroupResult, error) {
	bets, err := e.Store.ListPendingBets(ctx)
	if err != nil {
		return GroupResult{}, fmt.Errorf("list pending bets: %w", err)
	}
	want := locator.Normalize(matchName)
	g := group{name: matchName}
	for _, b := range bets {
		if !b.IsCombo() && locator.Normalize(b.MatchName) == want {
			g.bets = append(g.bets, b)
		}
	}
	if len(g.bets) == 0 {
		return GroupResult{MatchName: matchName}, ErrNoPendingBets
	}

	idx := e.loadIndexes(ctx, sportsFor(g.bets, nil, nil))
	gr := e.settleGroup(ctx, g, idx, TxRefund)

	var errs []error
	var failed int
	e.recomputeRevenue(ctx, gr.operators, &errs, &failed)
	gr.Errors = append(gr.Errors, errs...)
	gr.Failed += failed

	if !gr.Found {
		return gr, ErrMatchNotFound
	}
	return gr, nil
}

// settleGroup localiza e resolve a partida uma vez e liquida cada aposta do grupo
func (e *Engine) settleGroup(ctx context.Context, g group, idx map[parser.Sport]*locator.Index, voidTx TxType) (gr GroupResult) {
	gr = GroupResult{MatchName: g.name, operators: map[string]struct{}{}}
	defer func() {
		if r := recover(); r != nil {
			err := &SettlementError{Stage: StagePanic, Match: g.name, Err: fmt.Errorf("%v", r)}
			e.fail(&gr.Errors, err)
			gr.Failed += len(g.bets) - gr.Won - gr.Lost - gr.Voided - gr.Skipped
		}
	}()

	first := g.bets[0]
	sport := locator.SportFor(first.SportName, first.MatchName)
	t := locator.Target{MatchName: g.name, Sport: sport, CreatedAt: first.CreatedAt}
	for _, b := range g.bets {
		if b.MatchID != "" {
			t.MatchID = b.MatchID
			break
		}
	}

	ev := e.Finder.Find(ctx, t, idx[sport])
	if ev == nil {
		e.Log.Warn("match not found", zap.String("match", g.name), zap.String("match_id", t.MatchID),
			zap.String("sport", string(sport)))
		if e.OnUnmatched != nil {
			e.OnUnmatched()
		}
		gr.Skipped = len(g.bets)
		return gr
	}
	gr.Found, gr.EventID = true, ev.ID

	res := outcome.Resolve(*ev)
	gr.Completed, gr.Cancelled, gr.Winner = res.Completed, res.Cancelled, res.Winner
	if !res.Settleable() {
		gr.Skipped = len(g.bets)
		return gr
	}

	for _, b := range g.bets {
		st, op, err := e.settleSingle(ctx, b, *ev, res, voidTx)
		switch {
		case errors.Is(err, ErrNotPending):
			gr.Skipped++
		case err != nil:
			e.fail(&gr.Errors, err)
			gr.Failed++
		default:
			switch st {
			case StatusWon:
				gr.Won++
			case StatusLost:
				gr.Lost++
			case StatusVoid:
				gr.Voided++
			}
			if op != "" {
				gr.operators[op] = struct{}{}
			}
		}
	}
	return gr
}

func (e *Engine) loadIndexes(ctx context.Context, sports []parser.Sport) map[parser.Sport]*locator.Index {
	out := make(map[parser.Sport]*locator.Index, len(sports))
	for _, s := range sports {
		evs := e.Finder.History(ctx, s)
		out[s] = locator.NewIndex(evs)
		e.Log.Debug("feed history loaded", zap.String("sport", string(s)), zap.Int("events", len(evs)))
	}
	return out
}

func (e *Engine) recomputeRevenue(ctx context.Context, operators map[string]struct{}, errs *[]error, failed *int) int {
	ids := make([]string, 0, len(operators))
	for id := range operators {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	done := 0
	for _, id := range ids {
		total, err := e.Store.RecomputeOperatorRevenue(ctx, id)
		if err != nil {
			e.fail(errs, &SettlementError{Stage: StageRevenue, Err: fmt.Errorf("operator %s: %w", id, err)})
			*failed++
			continue
		}
		done++
		e.Log.Debug("operator revenue recomputed", zap.String("operator_id", id), zap.String("total_revenue", total.StringFixed(2)))
	}
	return done
}

func (e *Engine) fail(errs *[]error, err error) {
	*errs = append(*errs, err)
	stage := "unknown"
	var se *SettlementError
	if errors.As(err, &se) {
		stage = se.Stage
	}
	e.Log.Warn("settlement unit failed", zap.String("stage", stage), zap.Error(err))
	if e.OnFailure != nil {
		e.OnFailure(stage)
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (r *CycleReport) absorb(g GroupResult) {
	r.Won += g.Won
	r.Lost += g.Lost
	r.Settled += g.Won + g.Lost
	r.Voided += g.Voided
	r.Failed += g.Failed
	if g.Found {
		r.Skipped += g.Skipped
	} else {
		r.Unmatched += g.Skipped
	}
	r.Errors = append(r.Errors, g.Errors...)
}

// groupByMatch agrupa pelo nome normalizado mantendo a ordem de leitura
func groupByMatch(bets []Bet) []group {
	pos := map[string]int{}
	var out []group
	for _, b := range bets {
		k := locator.Normalize(b.MatchName)
		i, ok := pos[k]
		if !ok {
			i = len(out)
			pos[k] = i
			out = append(out, group{name: b.MatchName})
		}
		out[i].bets = append(out[i].bets, b)
	}
	return out
}

// sportsFor é a união dos esportes das apostas simples e das pernas abertas
func sportsFor(singles, combos []Bet, legs map[string][]ComboSelection) []parser.Sport {
	seen := map[parser.Sport]bool{}
	var out []parser.Sport
	add := func(s parser.Sport) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, b := range singles {
		add(locator.SportFor(b.SportName, b.MatchName))
	}
	for _, b := range combos {
		for i, l := range legs[b.ID] {
			if !l.Settled {
				add(locator.SportFor(legSport(l, i, b.SportName), l.MatchName))
			}
		}
	}
	return out
}
