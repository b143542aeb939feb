package feed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
)

// Endpoint é o sufixo de rota do provedor: "home", "d-3", "livescore"
type Endpoint string

const (
	EndpointRecent    Endpoint = "home"
	EndpointLiveScore Endpoint = "livescore"
)

// Day retorna o endpoint histórico de n dias atrás (1..7)
func Day(n int) Endpoint { return Endpoint(fmt.Sprintf("d-%d", n)) }

// namespaces mapeia o esporte para o namespace de rota do provedor.
// Futebol usa um namespace próprio.
var namespaces = map[parser.Sport]string{
	parser.SportSoccer:           "soccernew",
	parser.SportBasketball:       "bsktbl",
	parser.SportTennis:           "tennis_scores",
	parser.SportHockey:           "hockey",
	parser.SportBaseball:         "baseball",
	parser.SportAmericanFootball: "football",
	parser.SportCricket:          "cricket",
	parser.SportMMA:              "mma",
	parser.SportBoxing:           "boxing",
}

// Namespace retorna o namespace de rota do esporte
func Namespace(s parser.Sport) string {
	if ns, ok := namespaces[s]; ok {
		return ns
	}
	return string(s)
}

// HistoryEndpoints lista os endpoints consultados para um esporte, do mais recente
// para o mais antigo. Críquete usa apenas o livescore dedicado.
func HistoryEndpoints(s parser.Sport, days int) []Endpoint {
	if s == parser.SportCricket {
		return []Endpoint{EndpointLiveScore}
	}
	if days < 0 {
		days = 0
	}
	if days > 7 {
		days = 7
	}
	out := make([]Endpoint, 0, days+1)
	out = append(out, EndpointRecent)
	for n := 1; n <= days; n++ {
		out = append(out, Day(n))
	}
	return out
}

// DaysAgo retorna N para "d-N"; ok=false para home e livescore
func (e Endpoint) DaysAgo() (int, bool) {
	s := string(e)
	if !strings.HasPrefix(s, "d-") {
		return 0, false
	}
	n, err := strconv.Atoi(s[2:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Cacheable indica se a resposta do endpoint é estável o bastante para cache
func (e Endpoint) Cacheable() bool {
	return e != EndpointRecent && e != EndpointLiveScore
}
