package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPending indica que a aposta re-lida já está em estado terminal
	ErrNotPending = errors.New("bet is not pending")
	// ErrNoPendingBets é retornado pelo ForceSettleMatch quando não há o que liquidar
	ErrNoPendingBets = errors.New("no pending bets for match")
	// ErrUnknownSelection indica um palpite que não casa com casa/fora/empate
	ErrUnknownSelection = errors.New("selection does not map to a side")
	// ErrMatchNotFound indica que a partida não foi localizada no feed
	ErrMatchNotFound = errors.New("match not found in feed")
)

// Estágios do ciclo onde uma falha pode ocorrer
const (
	StageList        = "list"
	StageComboParse  = "combo_parse"
	StageSelection   = "selection"
	StageSettle      = "settle"
	StageComboUpdate = "combo_update"
	StageRevenue     = "revenue"
	StagePanic       = "panic"
)

// SettlementError é o erro de uma unidade de trabalho do ciclo
type SettlementError struct {
	Stage string
	BetID string
	Match string
	Err   error
}

func (e *SettlementError) Error() string {
	switch {
	case e.BetID != "":
		return fmt.Sprintf("%s: bet %s (%s): %v", e.Stage, e.BetID, e.Match, e.Err)
	case e.Match != "":
		return fmt.Sprintf("%s: match %s: %v", e.Stage, e.Match, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
}

func (e *SettlementError) Unwrap() error { return e.Err }
