package notify

import (
	"context"
	"errors"

	"github.com/radieske/bet-settlement-engine/pkg/contracts/events"
)

// Sink é qualquer destino de notificação
type Sink interface {
	BetSettled(ctx context.Context, ev events.BetSettled) error
	BalanceUpdate(ctx context.Context, ev events.BalanceUpdate) error
}

// Fanout entrega para todos os destinos; a falha de um não impede os outros
type Fanout []Sink

func (f Fanout) BetSettled(ctx context.Context, ev events.BetSettled) error {
	var errs []error
	for _, s := range f {
		if err := s.BetSettled(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) BalanceUpdate(ctx context.Context, ev events.BalanceUpdate) error {
	var errs []error
	for _, s := range f {
		if err := s.BalanceUpdate(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
