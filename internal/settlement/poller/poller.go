package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-engine/internal/settlement/engine"
)

const (
	DefaultInterval        = 300 * time.Second
	DefaultLivenessTimeout = 1500 * time.Millisecond
	statsEvery             = 10
)

// Cycler é o motor visto pelo loop
type Cycler interface {
	CheckForCompletedMatches(ctx context.Context) engine.CycleReport
}

// Pinger é o check leve de liveness do banco
type Pinger interface {
	Ping(ctx context.Context) error
}

// State é o estado do loop, protegido por mutex e lido via Snapshot
type State struct {
	mu sync.Mutex

	running        bool
	cycles         int
	lastCycleStart time.Time
	lastCycleEnd   time.Time
	lastReport     engine.CycleReport
	lastDBError    string
	totalSettled   int
	totalVoided    int
	totalFailed    int
	totalUnmatched int
	panics         int
}

// Snapshot é a cópia exportada do State
type Snapshot struct {
	Running        bool      `json:"running"`
	Cycles         int       `json:"cycles"`
	LastCycleStart time.Time `json:"last_cycle_start"`
	LastCycleEnd   time.Time `json:"last_cycle_end"`
	LastCycleID    string    `json:"last_cycle_id,omitempty"`
	LastDuration   string    `json:"last_duration"`
	LastPending    int       `json:"last_pending"`
	LastDBError    string    `json:"last_db_error,omitempty"`
	TotalSettled   int       `json:"total_settled"`
	TotalVoided    int       `json:"total_voided"`
	TotalFailed    int       `json:"total_failed"`
	TotalUnmatched int       `json:"total_unmatched"`
	Panics         int       `json:"panics"`
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Running:        s.running,
		Cycles:         s.cycles,
		LastCycleStart: s.lastCycleStart,
		LastCycleEnd:   s.lastCycleEnd,
		LastCycleID:    s.lastReport.ID,
		LastDuration:   s.lastReport.Duration.String(),
		LastPending:    s.lastReport.Pending,
		LastDBError:    s.lastDBError,
		TotalSettled:   s.totalSettled,
		TotalVoided:    s.totalVoided,
		TotalFailed:    s.totalFailed,
		TotalUnmatched: s.totalUnmatched,
		Panics:         s.panics,
	}
}

// Poller roda o motor num intervalo fixo numa única goroutine
type Poller struct {
	Engine          Cycler
	DB              Pinger // opcional
	Interval        time.Duration
	LivenessTimeout time.Duration
	Log             *zap.Logger

	// Hooks para métricas
	OnCycle        func(rep engine.CycleReport)
	OnLivenessFail func()

	state    State
	stopOnce sync.Once
	stop     chan struct{}
}

func New(eng Cycler, db Pinger, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		Engine:          eng,
		DB:              db,
		Interval:        interval,
		LivenessTimeout: DefaultLivenessTimeout,
		Log:             log,
		stop:            make(chan struct{}),
	}
}

// State expõe o estado para leitura (stats)
func (p *Poller) State() *State { return &p.state }

// Stop pede o encerramento; o ciclo em andamento termina antes
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// Run bloqueia até ctx cancelar ou Stop ser chamado.
// O primeiro ciclo roda imediatamente.
func (p *Poller) Run(ctx context.Context) error {
	p.setRunning(true)
	defer p.setRunning(false)
	p.Log.Info("settlement poller started", zap.Duration("interval", p.Interval))

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			p.Log.Info("settlement poller stopped", zap.Error(ctx.Err()))
			return nil
		case <-p.stop:
			p.Log.Info("settlement poller stopped")
			return nil
		case <-timer.C:
		}

		p.RunOnce(ctx)
		timer.Reset(p.Interval)
	}
}

// RunOnce executa um ciclo: liveness, motor, estatísticas. Pânicos são
// recuperados aqui e o loop segue no próximo agendamento.
func (p *Poller) RunOnce(ctx context.Context) {
	start := time.Now()
	p.state.mu.Lock()
	p.state.cycles++
	cycle := p.state.cycles
	p.state.lastCycleStart = start
	p.state.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			p.state.mu.Lock()
			p.state.panics++
			p.state.lastCycleEnd = time.Now()
			p.state.mu.Unlock()
			p.Log.Error("settlement cycle panicked", zap.Int("cycle", cycle), zap.String("panic", fmt.Sprint(r)), zap.Stack("stack"))
		}
	}()

	p.liveness(ctx)

	rep := p.Engine.CheckForCompletedMatches(ctx)

	p.state.mu.Lock()
	p.state.lastReport = rep
	p.state.lastCycleEnd = time.Now()
	p.state.totalSettled += rep.Settled
	p.state.totalVoided += rep.Voided
	p.state.totalFailed += rep.Failed
	p.state.totalUnmatched += rep.Unmatched
	p.state.mu.Unlock()

	if p.OnCycle != nil {
		p.OnCycle(rep)
	}

	if cycle%statsEvery == 0 {
		s := p.state.Snapshot()
		p.Log.Info("settlement stats",
			zap.Int("cycles", s.Cycles),
			zap.Int("total_settled", s.TotalSettled),
			zap.Int("total_voided", s.TotalVoided),
			zap.Int("total_failed", s.TotalFailed),
			zap.Int("total_unmatched", s.TotalUnmatched),
			zap.Int("panics", s.Panics),
		)
	}
}

// liveness só alimenta observabilidade; falha não impede o ciclo
func (p *Poller) liveness(ctx context.Context) {
	if p.DB == nil {
		return
	}
	lctx, cancel := context.WithTimeout(ctx, p.LivenessTimeout)
	defer cancel()
	err := p.DB.Ping(lctx)

	p.state.mu.Lock()
	if err != nil {
		p.state.lastDBError = err.Error()
	} else {
		p.state.lastDBError = ""
	}
	p.state.mu.Unlock()

	if err != nil {
		p.Log.Warn("db liveness check failed", zap.Error(err))
		if p.OnLivenessFail != nil {
			p.OnLivenessFail()
		}
	}
}

func (p *Poller) setRunning(v bool) {
	p.state.mu.Lock()
	p.state.running = v
	p.state.mu.Unlock()
}
