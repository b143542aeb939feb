package parser

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// idFields em ordem de prioridade
var idFields = []string{"id", "@id", "match_id", "event_id", "fixture_id", "game_id", "@fix_id", "static_id", "@static_id"}

// teamPairs são os pares casa/fora tentados em ordem
var teamPairs = [][2]string{
	{"localteam", "visitorteam"},
	{"home_team", "away_team"},
	{"home", "away"},
	{"team1", "team2"},
	{"player_1", "player_2"},
	{"p1", "p2"},
	{"fighter_1", "fighter_2"},
}

var leagueFields = []string{"league", "@league", "competition", "tournament", "league_name", "category", "@category"}

var dateTimeFields = []string{
	"start_time", "starttime", "@start_time", "commence_time", "kickoff", "date_time",
	"datetime", "@datetime_utc", "datetime_utc", "start", "scheduled",
}

var dateFields = []string{"formatted_date", "@formatted_date", "date", "@date"}
var timeFields = []string{"time", "@time", "start_hour"}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
	"02.01.2006",
	"2006/01/02",
	"02/01/2006",
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// str converte valores do feed em texto. Mapas XML/JSON aninhados
// usam "@name", "name" ou "#text".
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case map[string]any:
		for _, k := range []string{"@name", "name", "#text", "@value", "value"} {
			if s := str(t[k]); s != "" {
				return s
			}
		}
	}
	return ""
}

// first retorna o primeiro campo não vazio de m
func first(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s := str(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// ExtractID nunca falha: id explícito, slug "casa-fora-inicio" ou hash do registro
func ExtractID(m map[string]any) string {
	if id := first(m, idFields); id != "" {
		return id
	}
	home, away := ExtractTeams(m)
	if home != "" && away != "" {
		start := first(m, dateTimeFields)
		if start == "" {
			start = strings.TrimSpace(first(m, dateFields) + " " + first(m, timeFields))
		}
		slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(home+"-"+away+"-"+start), "-"), "-")
		if slug != "" {
			return slug
		}
	}
	// json.Marshal ordena as chaves, então o hash é estável
	b, _ := json.Marshal(m)
	sum := sha1.Sum(b)
	return "evt_" + hex.EncodeToString(sum[:8])
}

// ExtractTeams tenta cada par de campos casa/fora em ordem
func ExtractTeams(m map[string]any) (home, away string) {
	for _, p := range teamPairs {
		h, a := str(m[p[0]]), str(m[p[1]])
		if h != "" && a != "" {
			return h, a
		}
	}
	// alguns feeds mandam "awayteam" no lugar de "visitorteam"
	if h, a := str(m["localteam"]), str(m["awayteam"]); h != "" && a != "" {
		return h, a
	}
	return "", ""
}

// ExtractLeague retorna a liga/competição declarada no próprio registro
func ExtractLeague(m map[string]any) string {
	return first(m, leagueFields)
}

// ParseStartTime nunca retorna erro: nil quando nada parseia
func ParseStartTime(m map[string]any) *time.Time {
	for _, k := range dateTimeFields {
		if t := parseTimeValue(m[k]); t != nil {
			return t
		}
	}
	d := first(m, dateFields)
	if d == "" {
		return nil
	}
	if tm := first(m, timeFields); tm != "" {
		if t := parseTimeString(d + " " + tm); t != nil {
			return t
		}
	}
	return parseTimeString(d)
}

func parseTimeValue(v any) *time.Time {
	switch t := v.(type) {
	case float64:
		// epoch em segundos ou milissegundos
		if t <= 0 {
			return nil
		}
		sec := int64(t)
		if sec > 1e12 {
			sec /= 1000
		}
		u := time.Unix(sec, 0).UTC()
		return &u
	case string:
		return parseTimeString(t)
	case map[string]any:
		return parseTimeString(str(t))
	}
	return nil
}

func parseTimeString(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}
