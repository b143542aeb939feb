package metrics

import "github.com/prometheus/client_golang/prometheus"

// Settlement agrupa os coletores do settlement-worker
type Settlement struct {
	Cycles        prometheus.Counter
	CycleDuration prometheus.Histogram
	Settled       *prometheus.CounterVec // por resultado: won | lost | void
	Failures      *prometheus.CounterVec // por estágio
	Unmatched     prometheus.Counter
	FeedFetches   *prometheus.CounterVec // por esporte e resultado
	LivenessFails prometheus.Counter
}

// NewSettlement cria e registra os coletores no registerer informado
func NewSettlement(reg prometheus.Registerer) *Settlement {
	m := &Settlement{
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settlement_cycles_total", Help: "ciclos de liquidação executados",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "settlement_cycle_duration_seconds", Help: "duração de cada ciclo",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		Settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_bets_settled_total", Help: "apostas liquidadas por resultado",
		}, []string{"result"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_failures_total", Help: "falhas por estágio",
		}, []string{"stage"}),
		Unmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settlement_unmatched_total", Help: "partidas não encontradas no feed",
		}),
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_feed_fetches_total", Help: "requisições ao provedor",
		}, []string{"sport", "result"}),
		LivenessFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settlement_db_liveness_failures_total", Help: "falhas do ping de liveness",
		}),
	}
	reg.MustRegister(m.Cycles, m.CycleDuration, m.Settled, m.Failures, m.Unmatched, m.FeedFetches, m.LivenessFails)
	return m
}
