package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/clbanning/mxj/v2"
	"gopkg.in/yaml.v3"
)

// Match é uma partida simulada servida pelo feed-simulator
type Match struct {
	ID        string `yaml:"id"`
	Sport     string `yaml:"sport"` // namespace do provedor: soccernew, bsktbl, cricket...
	League    string `yaml:"league"`
	Home      string `yaml:"home"`
	Away      string `yaml:"away"`
	Status    string `yaml:"status"` // FT, Postp., HT, 45...
	HomeScore *int   `yaml:"home_score"`
	AwayScore *int   `yaml:"away_score"`
	Comment   string `yaml:"comment"` // críquete: "Team won by 5 wickets"
	DaysAgo   int    `yaml:"days_ago"` // 0 = home, 1..7 = d-N
}

// Catalog agrupa as partidas simuladas por namespace
type Catalog struct {
	Matches []Match `yaml:"matches"`
	// XMLDays são os dias servidos como XML (com content-type JSON), como o provedor real às vezes faz
	XMLDays []int `yaml:"xml_days"`
}

func score(n int) *int { return &n }

// Default é o catálogo fixo usado quando nenhum arquivo é informado
func Default() Catalog {
	return Catalog{
		Matches: []Match{
			{ID: "5001", Sport: "soccernew", League: "England: Premier League", Home: "Arsenal", Away: "Chelsea", Status: "FT", HomeScore: score(2), AwayScore: score(1)},
			{ID: "5002", Sport: "soccernew", League: "England: Premier League", Home: "Leeds", Away: "Everton", Status: "Postp."},
			{ID: "5003", Sport: "soccernew", League: "Brazil: Serie A", Home: "Flamengo", Away: "Palmeiras", Status: "HT", HomeScore: score(0), AwayScore: score(0)},
			{ID: "5004", Sport: "soccernew", League: "Brazil: Serie A", Home: "Grêmio", Away: "Internacional", Status: "FT", HomeScore: score(1), AwayScore: score(1), DaysAgo: 1},
			{ID: "5005", Sport: "soccernew", League: "Brazil: Serie A", Home: "Corinthians", Away: "Santos", Status: "FT", HomeScore: score(0), AwayScore: score(3), DaysAgo: 2},
			{ID: "7001", Sport: "bsktbl", League: "USA: NBA", Home: "Boston Celtics", Away: "Miami Heat", Status: "Final", HomeScore: score(112), AwayScore: score(104)},
			{ID: "9001", Sport: "cricket", League: "IPL", Home: "Mumbai Indians", Away: "Chennai Super Kings", Status: "Finished", Comment: "Chennai Super Kings won by 5 wickets"},
		},
		XMLDays: []int{2},
	}
}

// Load lê um catálogo em YAML
func Load(b []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	for i, m := range c.Matches {
		if m.ID == "" || m.Home == "" || m.Away == "" || m.Sport == "" {
			return Catalog{}, fmt.Errorf("catalog match %d: id, sport, home and away are required", i)
		}
	}
	return c, nil
}

// DaysAgo converte o endpoint do provedor em dias atrás; ok=false para rotas desconhecidas
func DaysAgo(endpoint string) (int, bool) {
	switch endpoint {
	case "home", "livescore":
		return 0, true
	}
	n, err := strconv.Atoi(strings.TrimPrefix(endpoint, "d-"))
	if err != nil || !strings.HasPrefix(endpoint, "d-") || n < 1 || n > 7 {
		return 0, false
	}
	return n, true
}

// ServesXML indica se o dia deve sair em XML
func (c Catalog) ServesXML(days int) bool {
	for _, d := range c.XMLDays {
		if d == days {
			return true
		}
	}
	return false
}

// Payload monta o documento scores > category > matches > match do namespace e dia
func (c Catalog) Payload(ns string, days int, now time.Time) map[string]any {
	date := now.AddDate(0, 0, -days).Format("02.01.2006")

	var order []string
	byLeague := map[string][]any{}
	for _, m := range c.Matches {
		if m.Sport != ns || m.DaysAgo != days {
			continue
		}
		if _, ok := byLeague[m.League]; !ok {
			order = append(order, m.League)
		}
		byLeague[m.League] = append(byLeague[m.League], m.record(date))
	}

	cats := make([]any, 0, len(order))
	for _, league := range order {
		cats = append(cats, map[string]any{
			"-name":   league,
			"matches": map[string]any{"match": byLeague[league]},
		})
	}
	return map[string]any{"scores": map[string]any{"-sport": ns, "category": cats}}
}

// record usa o prefixo "-" de atributo do mxj; no JSON vira "@"
func (m Match) record(date string) map[string]any {
	home := map[string]any{"-name": m.Home}
	away := map[string]any{"-name": m.Away}
	if m.HomeScore != nil {
		home["-goals"] = strconv.Itoa(*m.HomeScore)
	}
	if m.AwayScore != nil {
		away["-goals"] = strconv.Itoa(*m.AwayScore)
	}
	rec := map[string]any{
		"-id":             m.ID,
		"-status":         m.Status,
		"-formatted_date": date,
		"localteam":       home,
		"visitorteam":     away,
	}
	if m.Comment != "" {
		rec["-comment"] = m.Comment
	}
	return rec
}

// JSON devolve o payload com os atributos no formato "@attr" que o provedor usa em JSON
func JSON(payload map[string]any) map[string]any {
	return renameAttrs(payload).(map[string]any)
}

// XML serializa o payload com mxj
func XML(payload map[string]any) ([]byte, error) {
	b, err := mxj.Map(payload).XmlIndent("", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	return append([]byte(`<?xml version="1.0" encoding="UTF-8"?>`+"\n"), b...), nil
}

func renameAttrs(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if strings.HasPrefix(k, "-") {
				k = "@" + k[1:]
			}
			out[k] = renameAttrs(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = renameAttrs(val)
		}
		return out
	default:
		return v
	}
}
