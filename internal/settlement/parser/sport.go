package parser

import "strings"

// Sport é a chave canônica de esporte usada em todo o motor de liquidação
type Sport string

const (
	SportSoccer           Sport = "soccer"
	SportBasketball       Sport = "basketball"
	SportTennis           Sport = "tennis"
	SportHockey           Sport = "hockey"
	SportBaseball         Sport = "baseball"
	SportAmericanFootball Sport = "american_football"
	SportCricket          Sport = "cricket"
	SportMMA              Sport = "mma"
	SportBoxing           Sport = "boxing"
)

// sportAliases mapeia nomes livres (como gravados em bets.sport_name) para a chave canônica
var sportAliases = map[string]Sport{
	"soccer":            SportSoccer,
	"football":          SportSoccer,
	"futebol":           SportSoccer,
	"basketball":        SportBasketball,
	"basket":            SportBasketball,
	"nba":               SportBasketball,
	"tennis":            SportTennis,
	"hockey":            SportHockey,
	"ice hockey":        SportHockey,
	"ice_hockey":        SportHockey,
	"nhl":               SportHockey,
	"baseball":          SportBaseball,
	"mlb":               SportBaseball,
	"american football": SportAmericanFootball,
	"american_football": SportAmericanFootball,
	"nfl":               SportAmericanFootball,
	"cricket":           SportCricket,
	"mma":               SportMMA,
	"ufc":               SportMMA,
	"boxing":            SportBoxing,
}

// NormalizeSport converte um nome de esporte livre na chave canônica.
// Retorna "" quando o nome não é reconhecido.
func NormalizeSport(name string) Sport {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ""
	}
	if s, ok := sportAliases[n]; ok {
		return s
	}
	// nomes compostos do tipo "Soccer - Premier League"
	for _, sep := range []string{" - ", "/", ":", "|"} {
		if i := strings.Index(n, sep); i > 0 {
			if s, ok := sportAliases[strings.TrimSpace(n[:i])]; ok {
				return s
			}
		}
	}
	return ""
}

// Sports lista todos os esportes suportados, em ordem estável
func Sports() []Sport {
	return []Sport{
		SportSoccer, SportBasketball, SportTennis, SportHockey, SportBaseball,
		SportAmericanFootball, SportCricket, SportMMA, SportBoxing,
	}
}
