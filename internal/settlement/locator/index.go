package locator

import (
	"strconv"
	"strings"
	"time"

	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
)

// Target é o que se sabe de uma aposta (ou perna de combo) para achar a partida
type Target struct {
	MatchID   string
	MatchName string // "Casa vs Fora"
	Sport     parser.Sport
	League    string
	CreatedAt time.Time
	MatchDate *time.Time // data da partida, quando gravada
}

type compositeKey struct {
	league string
	home   string
	away   string
	day    string
}

// Index indexa os eventos históricos por id e por chave composta
type Index struct {
	byID   map[string]*parser.Event
	byKey  map[compositeKey]*parser.Event   // escopo + times + dia
	byPair map[compositeKey][]*parser.Event // escopo + times, todos os dias
	size   int
}

// NewIndex cria o índice e adiciona os eventos informados
func NewIndex(events ...[]parser.Event) *Index {
	idx := &Index{
		byID:   make(map[string]*parser.Event),
		byKey:  make(map[compositeKey]*parser.Event),
		byPair: make(map[compositeKey][]*parser.Event),
	}
	for _, evs := range events {
		idx.Add(evs)
	}
	return idx
}

// Add indexa eventos; em colisão o primeiro visto vence (feeds vêm do mais recente)
func (i *Index) Add(events []parser.Event) {
	for n := range events {
		ev := &events[n]
		i.size++
		if _, ok := i.byID[ev.ID]; !ok {
			i.byID[ev.ID] = ev
		}
		if ni := normalizeID(ev.ID); ni != ev.ID {
			if _, ok := i.byID[ni]; !ok {
				i.byID[ni] = ev
			}
		}
		if ev.HomeTeam == "" || ev.AwayTeam == "" {
			continue
		}
		for _, scope := range []string{string(ev.Sport), ev.League} {
			if scope == "" {
				continue
			}
			pk := key(scope, ev.HomeTeam, ev.AwayTeam, "")
			i.byPair[pk] = append(i.byPair[pk], ev)
			if ev.StartTime == nil {
				continue
			}
			k := key(scope, ev.HomeTeam, ev.AwayTeam, dayOf(*ev.StartTime))
			if _, ok := i.byKey[k]; !ok {
				i.byKey[k] = ev
			}
		}
	}
}

// Len retorna a quantidade de eventos indexados
func (i *Index) Len() int { return i.size }

// ByID busca por id exato, tentando também a forma inteira normalizada ("007" -> "7")
func (i *Index) ByID(id string) *parser.Event {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if ev, ok := i.byID[id]; ok {
		return ev
	}
	if ni := normalizeID(id); ni != id {
		return i.byID[ni]
	}
	return nil
}

// Locate aplica id exato e depois a chave composta.
// Ids reservados não participam do passo por id. Pela chave composta nunca
// volta partida disputada antes do dia em que a aposta foi feita.
func Locate(t Target, idx *Index) *parser.Event {
	if idx == nil {
		return nil
	}
	if t.MatchID != "" && !IsReservedID(t.MatchID) {
		if ev := idx.ByID(t.MatchID); ev != nil {
			return ev
		}
	}
	home, away, ok := SplitMatchName(t.MatchName)
	if !ok {
		return nil
	}
	var days []string
	if t.MatchDate != nil {
		days = append(days, dayOf(*t.MatchDate))
	}
	if !t.CreatedAt.IsZero() {
		days = append(days, dayOf(t.CreatedAt))
	}
	scopes := []string{string(t.Sport), t.League}
	for _, scope := range scopes {
		if scope == "" {
			continue
		}
		for _, d := range days {
			if ev, ok := idx.byKey[key(scope, home, away, d)]; ok && !playedBefore(ev, t.CreatedAt) {
				return ev
			}
		}
	}
	for _, scope := range scopes {
		if scope == "" {
			continue
		}
		if ev := idx.unambiguous(key(scope, home, away, ""), t.CreatedAt); ev != nil {
			return ev
		}
	}
	return nil
}

// unambiguous devolve o único candidato do confronto que pode ser o da aposta:
// sem data, ou disputado no dia da aposta ou depois. Mais de um candidato
// (séries, playoffs, jogos de ida e volta) não é resolvido sem data.
func (i *Index) unambiguous(pk compositeKey, createdAt time.Time) *parser.Event {
	var found *parser.Event
	for _, ev := range i.byPair[pk] {
		if playedBefore(ev, createdAt) {
			continue
		}
		if found != nil && found.ID != ev.ID {
			return nil
		}
		found = ev
	}
	return found
}

// playedBefore compara por dia UTC; sem data de criação ou de início não há como descartar
func playedBefore(ev *parser.Event, createdAt time.Time) bool {
	if ev.StartTime == nil || createdAt.IsZero() {
		return false
	}
	return dayOf(*ev.StartTime) < dayOf(createdAt)
}

func dayOf(t time.Time) string { return t.UTC().Format("2006-01-02") }

// SplitMatchName separa "Casa vs Fora" no literal " vs "
func SplitMatchName(name string) (home, away string, ok bool) {
	for _, sep := range []string{" vs ", " VS ", " Vs ", " vs. "} {
		if i := strings.Index(name, sep); i > 0 {
			home = strings.TrimSpace(name[:i])
			away = strings.TrimSpace(name[i+len(sep):])
			return home, away, home != "" && away != ""
		}
	}
	return "", "", false
}

// Normalize aplica minúsculas e trim, colapsando espaços internos
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func key(scope, home, away, day string) compositeKey {
	return compositeKey{league: Normalize(scope), home: Normalize(home), away: Normalize(away), day: day}
}

func normalizeID(id string) string {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return id
}

// IsReservedID identifica placeholders sintéticos que nunca vão ao provedor
func IsReservedID(id string) bool {
	return strings.HasPrefix(id, "combo_") || strings.HasPrefix(id, "match_")
}
