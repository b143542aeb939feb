package outcome

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
)

// Winner é o lado vencedor determinado para uma partida encerrada
type Winner string

const (
	WinnerNone Winner = ""
	WinnerHome Winner = "home"
	WinnerAway Winner = "away"
	WinnerDraw Winner = "draw"
)

// Resolution é o resultado da checagem de uma partida
type Resolution struct {
	Completed bool
	Cancelled bool
	Winner    Winner
	HomeScore *int
	AwayScore *int
}

// Settleable indica se a partida pode ser liquidada neste ciclo
func (r Resolution) Settleable() bool {
	return r.Cancelled || (r.Completed && r.Winner != WinnerNone)
}

var terminalStatuses = map[string]struct{}{
	"final": {}, "finished": {}, "ended": {}, "ft": {}, "full time": {}, "game over": {},
	"after extra time": {}, "aet": {}, "penalties": {}, "pen": {}, "90": {}, "120": {},
	"complete": {}, "completed": {}, "result": {}, "results": {}, "final result": {},
}

var cancelledStatuses = map[string]struct{}{
	"cancl.": {}, "postp.": {}, "wo": {},
	"cancelled": {}, "canceled": {}, "postponed": {}, "abandoned": {}, "aban.": {},
}

// NormalizeStatus classifica o status bruto do feed em encerrado/cancelado
func NormalizeStatus(raw string) (completed, cancelled bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return false, false
	}
	if _, ok := cancelledStatuses[s]; ok {
		return false, true
	}
	if _, ok := terminalStatuses[s]; ok {
		return true, false
	}
	// contador de minutos de prorrogação ("105", "118")
	if n, err := strconv.Atoi(s); err == nil && n > 90 {
		return true, false
	}
	return false, false
}

// Resolve determina estado e vencedor de um evento
func Resolve(ev parser.Event) Resolution {
	completed, cancelled := NormalizeStatus(ev.Status)
	res := Resolution{
		Completed: completed,
		Cancelled: cancelled,
		HomeScore: TeamScore(ev.Raw, Home),
		AwayScore: TeamScore(ev.Raw, Away),
	}
	if !completed {
		return res
	}
	if ev.Sport == parser.SportCricket {
		res.Winner = cricketWinner(ev, &res)
		return res
	}
	res.Winner = compareScores(res.HomeScore, res.AwayScore)
	return res
}

func compareScores(home, away *int) Winner {
	if home == nil || away == nil {
		return WinnerNone
	}
	switch {
	case *home > *away:
		return WinnerHome
	case *home < *away:
		return WinnerAway
	default:
		return WinnerDraw
	}
}

var commentFields = []string{"comment", "@comment", "commentary", "@commentary", "note", "@note", "result_text", "matchinfo"}

var runsRe = regexp.MustCompile(`^\s*(\d+)`)

// cricketWinner: flag explícito > comentário > comparação de runs
func cricketWinner(ev parser.Event, res *Resolution) Winner {
	if w := winnerFlag(ev); w != WinnerNone {
		return w
	}

	home, away := cricketRuns(ev.Raw, Home), cricketRuns(ev.Raw, Away)
	if home != nil && away != nil {
		res.HomeScore, res.AwayScore = home, away
	}

	for _, f := range commentFields {
		text, ok := ev.Raw[f].(string)
		if !ok || text == "" {
			continue
		}
		t := strings.ToLower(text)
		if strings.Contains(t, "draw") || strings.Contains(t, "tie") {
			return WinnerDraw
		}
		if strings.Contains(t, "won") {
			if w := compareScores(res.HomeScore, res.AwayScore); w == WinnerHome || w == WinnerAway {
				return w
			}
			if w := teamNamed(t, ev.HomeTeam, ev.AwayTeam); w != WinnerNone {
				return w
			}
		}
	}
	return compareScores(res.HomeScore, res.AwayScore)
}

// winnerFlag lê o booleano "winner" por time ou o nome do vencedor
func winnerFlag(ev parser.Event) Winner {
	flags := []struct {
		side Winner
		keys []string
	}{
		{WinnerHome, []string{"localteam", "home"}},
		{WinnerAway, []string{"visitorteam", "awayteam", "away"}},
	}
	for _, fl := range flags {
		for _, k := range fl.keys {
			m, ok := ev.Raw[k].(map[string]any)
			if !ok {
				continue
			}
			for _, f := range []string{"@winner", "winner"} {
				if truthy(m[f]) {
					return fl.side
				}
			}
		}
	}
	if ev.Winner != "" {
		w := strings.ToLower(ev.Winner)
		switch {
		case w == "draw" || w == "tie":
			return WinnerDraw
		case strings.EqualFold(ev.Winner, ev.HomeTeam):
			return WinnerHome
		case strings.EqualFold(ev.Winner, ev.AwayTeam):
			return WinnerAway
		}
	}
	return WinnerNone
}

func teamNamed(text, home, away string) Winner {
	h := home != "" && strings.Contains(text, strings.ToLower(home))
	a := away != "" && strings.Contains(text, strings.ToLower(away))
	switch {
	case h && !a:
		return WinnerHome
	case a && !h:
		return WinnerAway
	}
	return WinnerNone
}

// cricketRuns soma as entradas "245/6 & 120/3" do lado pedido
func cricketRuns(raw map[string]any, side Side) *int {
	keys := append([]string{string(side)}, legacyKeys[side]...)
	for _, k := range keys {
		m, ok := raw[k].(map[string]any)
		if !ok {
			continue
		}
		for _, f := range []string{"@totalscore", "totalscore", "score", "@score", "runs", "@runs"} {
			s, ok := m[f].(string)
			if !ok {
				if n := parseInt(m[f]); n != nil {
					return n
				}
				continue
			}
			total, found := 0, false
			for _, part := range strings.Split(s, "&") {
				if sm := runsRe.FindStringSubmatch(part); sm != nil {
					n, _ := strconv.Atoi(sm[1])
					total += n
					found = true
				}
			}
			if found {
				return &total
			}
		}
	}
	return TeamScore(raw, side)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes":
			return true
		}
	case float64:
		return t == 1
	}
	return false
}
