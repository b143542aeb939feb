package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/radieske/bet-settlement-engine/internal/settlement/engine"
)

type fakeEngine struct {
	calls atomic.Int32
	panic bool
	rep   engine.CycleReport
}

func (f *fakeEngine) CheckForCompletedMatches(context.Context) engine.CycleReport {
	f.calls.Add(1)
	if f.panic {
		panic("boom")
	}
	return f.rep
}

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }

func TestRunOnce_AccumulatesState(t *testing.T) {
	eng := &fakeEngine{rep: engine.CycleReport{ID: "c1", Pending: 3, Settled: 2, Voided: 1, Failed: 1, Unmatched: 1}}
	p := New(eng, fakeDB{}, time.Hour, nil)
	var seen []engine.CycleReport
	p.OnCycle = func(rep engine.CycleReport) { seen = append(seen, rep) }

	p.RunOnce(context.Background())
	p.RunOnce(context.Background())

	s := p.State().Snapshot()
	if s.Cycles != 2 || s.TotalSettled != 4 || s.TotalVoided != 2 || s.TotalFailed != 2 || s.TotalUnmatched != 2 {
		t.Fatalf("snapshot = %+v", s)
	}
	if s.LastCycleID != "c1" || s.LastPending != 3 {
		t.Fatalf("last report not kept: %+v", s)
	}
	if len(seen) != 2 {
		t.Fatalf("OnCycle calls = %d", len(seen))
	}
}

func TestRunOnce_LivenessFailureDoesNotBlockCycle(t *testing.T) {
	eng := &fakeEngine{}
	p := New(eng, fakeDB{err: errors.New("timeout")}, time.Hour, nil)
	fails := 0
	p.OnLivenessFail = func() { fails++ }

	p.RunOnce(context.Background())

	if eng.calls.Load() != 1 || fails != 1 {
		t.Fatalf("engine calls = %d, liveness fails = %d", eng.calls.Load(), fails)
	}
	if s := p.State().Snapshot(); s.LastDBError != "timeout" {
		t.Fatalf("LastDBError = %q", s.LastDBError)
	}
}

func TestRunOnce_RecoversPanic(t *testing.T) {
	p := New(&fakeEngine{panic: true}, nil, time.Hour, nil)
	p.RunOnce(context.Background())
	p.RunOnce(context.Background())
	if s := p.State().Snapshot(); s.Panics != 2 || s.Cycles != 2 {
		t.Fatalf("snapshot = %+v", s)
	}
}

func TestRun_IntervalAndStop(t *testing.T) {
	eng := &fakeEngine{}
	p := New(eng, nil, 20*time.Millisecond, nil)

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for eng.calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d cycles ran", eng.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !p.State().Snapshot().Running {
		t.Fatal("poller should report running")
	}
	p.Stop()
	p.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if p.State().Snapshot().Running {
		t.Fatal("poller should report stopped")
	}
}

func TestRun_ContextCancel(t *testing.T) {
	p := New(&fakeEngine{}, nil, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNew_Defaults(t *testing.T) {
	p := New(&fakeEngine{}, nil, 0, nil)
	if p.Interval != DefaultInterval || p.LivenessTimeout != DefaultLivenessTimeout {
		t.Fatalf("defaults = %v / %v", p.Interval, p.LivenessTimeout)
	}
}
