package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-engine/internal/settlement/engine"
	"github.com/radieske/bet-settlement-engine/internal/settlement/poller"
)

// StatsSource fornece o snapshot do loop de liquidação
type StatsSource interface {
	Snapshot() poller.Snapshot
}

// StatusCounter resume as apostas por status (repo.Postgres implementa)
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[engine.Status]int, error)
}

// ForceSettler é a liquidação manual de uma partida
type ForceSettler interface {
	ForceSettleMatch(ctx context.Context, matchName string) (engine.GroupResult, error)
}

// API expõe os endpoints de operação do settlement-worker
type API struct {
	Stats   StatsSource
	Counts  StatusCounter // opcional
	Settler ForceSettler
	WS      http.HandlerFunc // opcional; sala por usuário
	Origins []string
	Log     *zap.Logger
}

// Router retorna o roteador HTTP com os endpoints de operação
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.Origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/v1/stats", a.stats)              // snapshot do loop + contagem por status
	r.Post("/v1/settle/force", a.forceSettle) // liquidação manual de uma partida
	if a.WS != nil {
		r.Get("/ws", a.WS) // eventos bet:settled / balance:update do usuário
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statsResponse struct {
	Poller poller.Snapshot `json:"poller"`
	Bets   map[string]int  `json:"bets,omitempty"`
}

func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{Poller: a.Stats.Snapshot()}
	if a.Counts != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		counts, err := a.Counts.CountByStatus(ctx)
		if err != nil {
			a.log().Warn("count bets by status failed", zap.Error(err))
		} else {
			resp.Bets = make(map[string]int, len(counts))
			for s, n := range counts {
				resp.Bets[string(s)] = n
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type forceRequest struct {
	MatchName string `json:"match_name"`
}

type forceResponse struct {
	MatchName string   `json:"match_name"`
	EventID   string   `json:"event_id,omitempty"`
	Found     bool     `json:"found"`
	Completed bool     `json:"completed"`
	Cancelled bool     `json:"cancelled"`
	Winner    string   `json:"winner,omitempty"`
	Won       int      `json:"won"`
	Lost      int      `json:"lost"`
	Voided    int      `json:"voided"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

func (a *API) forceSettle(w http.ResponseWriter, r *http.Request) {
	var req forceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MatchName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "match_name required"})
		return
	}

	gr, err := a.Settler.ForceSettleMatch(r.Context(), req.MatchName)
	switch {
	case errors.Is(err, engine.ErrNoPendingBets):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, engine.ErrMatchNotFound):
		writeJSON(w, http.StatusNotFound, toForceResponse(gr, err))
		return
	case err != nil:
		a.log().Error("force settle failed", zap.String("match", req.MatchName), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	a.log().Info("force settle done", zap.String("match", req.MatchName),
		zap.Int("won", gr.Won), zap.Int("lost", gr.Lost), zap.Int("voided", gr.Voided))
	writeJSON(w, http.StatusOK, toForceResponse(gr, nil))
}

func toForceResponse(gr engine.GroupResult, err error) forceResponse {
	out := forceResponse{
		MatchName: gr.MatchName,
		EventID:   gr.EventID,
		Found:     gr.Found,
		Completed: gr.Completed,
		Cancelled: gr.Cancelled,
		Winner:    string(gr.Winner),
		Won:       gr.Won,
		Lost:      gr.Lost,
		Voided:    gr.Voided,
		Skipped:   gr.Skipped,
		Failed:    gr.Failed,
	}
	for _, e := range gr.Errors {
		out.Errors = append(out.Errors, e.Error())
	}
	if err != nil {
		out.Errors = append(out.Errors, err.Error())
	}
	return out
}

func (a *API) log() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}
