package parser

import (
	"sort"
)

var marketContainerKeys = []string{"markets", "odds", "betting", "lines", "books"}
var marketNameFields = []string{"name", "@name", "key", "market", "market_name", "@value", "value"}
var marketOutcomeFields = []string{"outcomes", "selections", "odds", "odd", "prices", "bookmaker"}

// ParseBySport converte o payload bruto de um esporte em eventos canônicos.
// Nunca falha: registros ou mercados com problema são descartados.
func ParseBySport(sport Sport, raw any) []Event {
	var out []Event
	for _, rec := range collect(raw) {
		if ev, ok := parseEvent(sport, rec); ok {
			out = append(out, ev)
		}
	}
	return out
}

func parseEvent(sport Sport, rec record) (ev Event, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	m := rec.data
	home, away := ExtractTeams(m)
	league := ExtractLeague(m)
	if league == "" {
		league = rec.category
	}
	ev = Event{
		ID:        ExtractID(m),
		Sport:     sport,
		League:    league,
		Category:  rec.category,
		HomeTeam:  home,
		AwayTeam:  away,
		StartTime: ParseStartTime(m),
		Status:    first(m, []string{"status", "@status", "state", "match_status"}),
		Raw:       m,
	}
	if sport == SportCricket {
		ev.Venue = first(m, []string{"venue", "@venue"})
		ev.MatchType = first(m, []string{"match_type", "@type", "type"})
		ev.Winner = first(m, []string{"winner", "@winner", "winner_team"})
	}
	ev.Markets = parseMarkets(sport, m)
	return ev, ev.ID != ""
}

type marketEntry struct {
	name     string
	outcomes any
}

func parseMarkets(sport Sport, m map[string]any) []Market {
	var entries []marketEntry
	for _, k := range marketContainerKeys {
		if v, ok := m[k]; ok {
			entries = append(entries, marketEntries(v, 0)...)
		}
	}
	var out []Market
	for _, e := range entries {
		if mk, ok := buildMarket(sport, e); ok {
			out = append(out, mk)
		}
	}
	return out
}

func buildMarket(sport Sport, e marketEntry) (mk Market, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	name, known := NormalizeMarketName(e.name)
	if !known || !MarketAllowed(sport, name) {
		return Market{}, false
	}
	spec := SpecFor(name)
	return Market{
		Name:     name,
		RawName:  e.name,
		Spec:     spec,
		Outcomes: parseOutcomes(spec, e.outcomes),
	}, true
}

// marketEntries aceita lista heterogênea ou mapa nome->outcomes
func marketEntries(raw any, depth int) []marketEntry {
	if depth > 3 {
		return nil
	}
	switch t := raw.(type) {
	case []any:
		var out []marketEntry
		for _, item := range t {
			im, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name := first(im, marketNameFields)
			if name == "" {
				continue
			}
			out = append(out, marketEntry{name: name, outcomes: outcomesOf(im)})
		}
		return out
	case map[string]any:
		// wrapper do provedor: {"type": [...]} ou {"market": [...]}
		for _, k := range []string{"type", "market"} {
			if v, ok := t[k]; ok {
				if _, isMap := v.(map[string]any); isMap || isList(v) {
					return marketEntries(asList(v), depth+1)
				}
			}
		}
		names := make([]string, 0, len(t))
		for k := range t {
			names = append(names, k)
		}
		sort.Strings(names)
		var out []marketEntry
		for _, n := range names {
			v := t[n]
			if vm, ok := v.(map[string]any); ok {
				if o, has := vm["outcomes"]; has {
					v = o
				}
			}
			out = append(out, marketEntry{name: n, outcomes: v})
		}
		return out
	}
	return nil
}

// outcomesOf acha a lista de outcomes de um mercado; com "bookmaker" usa o primeiro
func outcomesOf(m map[string]any) any {
	for _, k := range marketOutcomeFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		if k != "bookmaker" {
			return v
		}
		books := asList(v)
		if len(books) == 0 {
			return nil
		}
		if b, ok := books[0].(map[string]any); ok {
			for _, ok2 := range []string{"odd", "odds", "outcomes"} {
				if o, has := b[ok2]; has {
					return o
				}
			}
		}
		return nil
	}
	return nil
}

// asList normaliza elemento único (comum em XML convertido) para lista
func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case nil:
		return nil
	default:
		return []any{t}
	}
}
