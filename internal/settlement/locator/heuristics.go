package locator

import (
	"strings"

	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
)

// teamHints associa trechos de nomes de times a esportes.
// Só vale para apostas antigas gravadas sem sport_name.
var teamHints = []struct {
	hint  string
	sport parser.Sport
}{
	{"lakers", parser.SportBasketball},
	{"celtics", parser.SportBasketball},
	{"warriors", parser.SportBasketball},
	{"bulls", parser.SportBasketball},
	{"knicks", parser.SportBasketball},
	{"yankees", parser.SportBaseball},
	{"red sox", parser.SportBaseball},
	{"dodgers", parser.SportBaseball},
	{"maple leafs", parser.SportHockey},
	{"canadiens", parser.SportHockey},
	{"bruins", parser.SportHockey},
	{"patriots", parser.SportAmericanFootball},
	{"cowboys", parser.SportAmericanFootball},
	{"packers", parser.SportAmericanFootball},
	{"chiefs", parser.SportAmericanFootball},
	{"india", parser.SportCricket},
	{"pakistan", parser.SportCricket},
	{"sri lanka", parser.SportCricket},
	{"bangladesh", parser.SportCricket},
	{"australia", parser.SportCricket},
	{"nadal", parser.SportTennis},
	{"djokovic", parser.SportTennis},
	{"alcaraz", parser.SportTennis},
	{"sinner", parser.SportTennis},
}

// GuessSport infere o esporte pelo nome da partida; futebol por padrão
func GuessSport(matchName string) parser.Sport {
	n := Normalize(matchName)
	for _, h := range teamHints {
		if strings.Contains(n, h.hint) {
			return h.sport
		}
	}
	return parser.SportSoccer
}

// SportFor prefere o sport_name gravado e cai na heurística só sem ele.
// Um nome gravado e não reconhecido vira a própria chave ("Beach Volleyball" -> "beach_volleyball")
// e é consultado com esse namespace no provedor.
func SportFor(sportName, matchName string) parser.Sport {
	if s := parser.NormalizeSport(sportName); s != "" {
		return s
	}
	if raw := strings.Fields(strings.ToLower(sportName)); len(raw) > 0 {
		return parser.Sport(strings.Join(raw, "_"))
	}
	return GuessSport(matchName)
}
