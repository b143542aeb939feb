package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/bet-settlement-engine/internal/settlement/engine"
	"github.com/radieske/bet-settlement-engine/internal/settlement/feed"
	httpapi "github.com/radieske/bet-settlement-engine/internal/settlement/http"
	"github.com/radieske/bet-settlement-engine/internal/settlement/locator"
	"github.com/radieske/bet-settlement-engine/internal/settlement/notify"
	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
	"github.com/radieske/bet-settlement-engine/internal/settlement/poller"
	"github.com/radieske/bet-settlement-engine/internal/settlement/repo"
	"github.com/radieske/bet-settlement-engine/internal/settlement/wallet"
	"github.com/radieske/bet-settlement-engine/internal/settlement/ws"
	"github.com/radieske/bet-settlement-engine/internal/shared/cache"
	"github.com/radieske/bet-settlement-engine/internal/shared/config"
	"github.com/radieske/bet-settlement-engine/internal/shared/db"
	"github.com/radieske/bet-settlement-engine/internal/shared/kafka"
	"github.com/radieske/bet-settlement-engine/internal/shared/logger"
	"github.com/radieske/bet-settlement-engine/internal/shared/metrics"
)

func main() {
	forceMatch := flag.String("force-match", "", "liquida manualmente a partida informada e sai")
	flag.Parse()

	// carrega config
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com cache Redis
	redisClient, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// writers Kafka dos eventos de liquidação
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()
	balanceWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBalanceUpdates)
	defer balanceWriter.Close()
	log.Info("kafka writers ready",
		zap.String("settled_topic", cfg.TopicBetSettled),
		zap.String("balance_topic", cfg.TopicBalanceUpdates),
	)

	m := metrics.NewSettlement(prometheus.DefaultRegisterer)

	// provedor de resultados com cache de históricos no Redis
	feedClient := feed.New(cfg.FeedBaseURL, cfg.FeedToken, cfg.FeedTimeout, log)
	feedClient.Cache = feed.NewRedisCache(redisClient, cfg.FeedCacheTTL)
	feedClient.CacheTTL = cfg.FeedCacheTTL
	feedClient.OnFetch = func(sport parser.Sport, result string) {
		m.FeedFetches.WithLabelValues(string(sport), result).Inc()
	}

	store := repo.NewPostgres(pg, cfg.StatementTimeout)
	searcher := locator.NewSearcher(feedClient, cfg.FeedHistoryDays, log)

	eng := engine.New(store, searcher, log)
	eng.Notifier = notify.Fanout{
		notify.NewUserRooms(notify.NewRedisBroadcaster(redisClient), cfg.RedisUserChannelPrefix),
		&notify.KafkaPublisher{Settled: settledWriter, Balances: balanceWriter},
	}
	if cfg.WalletMirrorURL != "" {
		eng.Wallet = wallet.New(cfg.WalletMirrorURL)
		log.Info("wallet mirror enabled", zap.String("url", cfg.WalletMirrorURL))
	}
	eng.OnSettled = func(s engine.Status) { m.Settled.WithLabelValues(string(s)).Inc() }
	eng.OnFailure = func(stage string) { m.Failures.WithLabelValues(stage).Inc() }
	eng.OnUnmatched = func() { m.Unmatched.Inc() }

	// liquidação manual: roda uma vez e sai
	if name := strings.TrimSpace(*forceMatch); name != "" {
		gr, err := eng.ForceSettleMatch(ctx, name)
		if err != nil {
			log.Fatal("force settle failed", zap.String("match", name), zap.Error(err))
		}
		log.Info("force settle done",
			zap.String("match", gr.MatchName),
			zap.String("event_id", gr.EventID),
			zap.Int("won", gr.Won),
			zap.Int("lost", gr.Lost),
			zap.Int("voided", gr.Voided),
			zap.Int("failed", gr.Failed),
		)
		return
	}

	p := poller.New(eng, store, cfg.PollInterval, log)
	p.LivenessTimeout = cfg.LivenessTimeout
	p.OnCycle = func(rep engine.CycleReport) {
		m.Cycles.Inc()
		m.CycleDuration.Observe(rep.Duration.Seconds())
	}
	p.OnLivenessFail = func() { m.LivenessFails.Inc() }

	// salas por usuário alimentadas pelo pub/sub do Redis
	hub := ws.NewHub(originChecker(cfg.CORSOrigins), log)
	ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisUserChannelPrefix, hub, log)

	api := &httpapi.API{
		Stats:   p.State(),
		Counts:  store,
		Settler: eng,
		WS:      hub.HandleWS,
		Origins: cfg.CORSOrigins,
		Log:     log,
	}
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// healthz: valida dependências críticas
	health := func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}
	metricsSrv := metrics.NewServer(cfg.MetricsPort, health)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Run(gctx) })
	g.Go(func() error { return serve(srv, log, "settlement api") })
	g.Go(func() error { return serve(metricsSrv, log, "metrics/health") })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		p.Stop()
		return errors.Join(srv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("settlement worker stopped with error", zap.Error(err))
		return
	}
	log.Info("shutdown complete")
}

func serve(srv *http.Server, log *zap.Logger, name string) error {
	log.Info(name+" listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// originChecker libera o upgrade do WebSocket para as origens configuradas ("*" libera tudo)
func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
