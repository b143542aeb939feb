package locator

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/radieske/bet-settlement-engine/internal/settlement/feed"
	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
)

// ErrReservedID indica um id sintético que nunca deve ir ao provedor
var ErrReservedID = errors.New("reserved match id")

// Fetcher é o subconjunto do feed.Client usado aqui
type Fetcher interface {
	Fetch(ctx context.Context, sport parser.Sport, ep feed.Endpoint) (any, error)
}

// Searcher carrega o histórico e faz a busca ao vivo no provedor
type Searcher struct {
	Feed Fetcher
	Days int // janela de dias para trás (máx. 7)
	Log  *zap.Logger
}

func NewSearcher(f Fetcher, days int, log *zap.Logger) *Searcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{Feed: f, Days: days, Log: log}
}

// History busca "recent" + d-1..d-N do esporte e devolve todos os eventos,
// inclusive os em andamento. Falha de um endpoint só zera a contribuição dele.
func (s *Searcher) History(ctx context.Context, sport parser.Sport) []parser.Event {
	var out []parser.Event
	for _, ep := range feed.HistoryEndpoints(sport, s.Days) {
		if ctx.Err() != nil {
			break
		}
		raw, err := s.Feed.Fetch(ctx, sport, ep)
		if err != nil {
			s.Log.Warn("feed fetch failed",
				zap.String("sport", string(sport)), zap.String("endpoint", string(ep)), zap.Error(err))
			continue
		}
		out = append(out, parser.ParseBySport(sport, raw)...)
	}
	return out
}

// SearchRemote percorre os endpoints do esporte até achar o id da partida.
// Retorna (nil, nil) quando não encontra.
func (s *Searcher) SearchRemote(ctx context.Context, t Target) (*parser.Event, error) {
	if t.MatchID == "" {
		return nil, nil
	}
	if IsReservedID(t.MatchID) {
		return nil, ErrReservedID
	}
	sport := t.Sport
	if sport == "" {
		sport = GuessSport(t.MatchName)
	}
	for _, ep := range feed.HistoryEndpoints(sport, s.Days) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := s.Feed.Fetch(ctx, sport, ep)
		if err != nil {
			s.Log.Warn("live search fetch failed",
				zap.String("sport", string(sport)), zap.String("endpoint", string(ep)), zap.Error(err))
			continue
		}
		events := parser.ParseBySport(sport, raw)
		if ev := NewIndex(events).ByID(t.MatchID); ev != nil {
			s.Log.Debug("match found by live search",
				zap.String("match_id", t.MatchID), zap.String("endpoint", string(ep)))
			return ev, nil
		}
	}
	return nil, nil
}

// Find aplica Locate no índice e, se nada casar, a busca ao vivo
func (s *Searcher) Find(ctx context.Context, t Target, idx *Index) *parser.Event {
	if ev := Locate(t, idx); ev != nil {
		return ev
	}
	ev, err := s.SearchRemote(ctx, t)
	if err != nil && !errors.Is(err, ErrReservedID) {
		s.Log.Warn("live search aborted", zap.String("match_id", t.MatchID), zap.Error(err))
	}
	return ev
}
