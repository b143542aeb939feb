package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-engine/internal/feed-simulator/catalog"
	"github.com/radieske/bet-settlement-engine/internal/shared/config"
	"github.com/radieske/bet-settlement-engine/internal/shared/logger"
	"github.com/radieske/bet-settlement-engine/internal/shared/metrics"
)

// Métricas Prometheus das requisições servidas
var feedRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "feed_simulator_requests_total",
	Help: "Requisições servidas pelo simulador de resultados",
}, []string{"namespace", "format"})

// server responde as rotas /{token}/{ns}/{endpoint} a partir do catálogo
type server struct {
	cat   catalog.Catalog
	token string
	log   *zap.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Get("/getfeed/{token}/{ns}/{endpoint}", s.feedHandler)
	return r
}

func (s *server) feedHandler(w http.ResponseWriter, r *http.Request) {
	if s.token != "" && chi.URLParam(r, "token") != s.token {
		http.Error(w, "invalid token", http.StatusForbidden)
		return
	}
	ns := chi.URLParam(r, "ns")
	days, ok := catalog.DaysAgo(chi.URLParam(r, "endpoint"))
	if !ok {
		http.Error(w, "unknown endpoint", http.StatusNotFound)
		return
	}

	payload := s.cat.Payload(ns, days, time.Now().UTC())

	// o provedor real às vezes manda XML com content-type de JSON
	w.Header().Set("Content-Type", "application/json")
	if s.cat.ServesXML(days) {
		b, err := catalog.XML(payload)
		if err != nil {
			s.log.Error("xml encode failed", zap.Error(err))
			http.Error(w, "encode failed", http.StatusInternalServerError)
			return
		}
		feedRequests.WithLabelValues(ns, "xml").Inc()
		_, _ = w.Write(b)
		return
	}
	feedRequests.WithLabelValues(ns, "json").Inc()
	_ = json.NewEncoder(w).Encode(catalog.JSON(payload))
}

func loadCatalog() (catalog.Catalog, error) {
	path := os.Getenv("FEED_CATALOG_FILE")
	if path == "" {
		return catalog.Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return catalog.Load(b)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cat, err := loadCatalog()
	if err != nil {
		log.Fatal("failed to load catalog", zap.Error(err))
	}

	prometheus.MustRegister(feedRequests)
	metrics.StartMetricsServer(cfg.MetricsPort, nil, log)

	s := &server{cat: cat, token: cfg.FeedToken, log: log}
	addr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("feed simulator running",
		zap.String("addr", addr),
		zap.Int("matches", len(cat.Matches)),
		zap.Ints("xml_days", cat.XMLDays),
	)
	srv := &http.Server{Addr: addr, Handler: s.routes(), ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("feed server error", zap.Error(err))
	}
}
