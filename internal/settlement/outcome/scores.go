package outcome

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Side identifica o lado da partida
type Side string

const (
	Home Side = "home"
	Away Side = "away"
)

// legacyKeys são os nomes antigos do provedor para cada lado
var legacyKeys = map[Side][]string{
	Home: {"localteam"},
	Away: {"awayteam", "visitorteam"},
}

var altScoreFields = []string{"runs", "r", "goals", "score", "points", "goals_scored"}

var scoreStringFields = []string{"score", "@score", "ft_score", "@ft_score", "final_score"}

// scoreTier é um extrator tentado em sequência; nil passa para o próximo
type scoreTier func(raw map[string]any, side Side) *int

var scoreTiers = []scoreTier{
	flatScore,
	nestedTotalScore,
	legacyTotalScore,
	altFieldScore,
	scoreString,
}

// TeamScore aplica as cinco camadas de fallback em ordem estrita.
// Retorna nil quando nenhuma camada produz um inteiro, nunca entra em pânico.
func TeamScore(raw map[string]any, side Side) (score *int) {
	defer func() {
		if r := recover(); r != nil {
			score = nil
		}
	}()
	if raw == nil {
		return nil
	}
	for _, tier := range scoreTiers {
		if s := tier(raw, side); s != nil {
			return s
		}
	}
	return nil
}

// 1) {side}_score
func flatScore(raw map[string]any, side Side) *int {
	k := string(side) + "_score"
	if v, ok := raw[k]; ok {
		return parseInt(v)
	}
	return parseInt(raw["@"+k])
}

// 2) {side: {"@totalscore": ...}}
func nestedTotalScore(raw map[string]any, side Side) *int {
	return totalScore(raw[string(side)])
}

// 3) localteam/awayteam com @totalscore
func legacyTotalScore(raw map[string]any, side Side) *int {
	for _, k := range legacyKeys[side] {
		if s := totalScore(raw[k]); s != nil {
			return s
		}
	}
	return nil
}

// 4) campos alternativos dentro do mapa do lado
func altFieldScore(raw map[string]any, side Side) *int {
	keys := append([]string{string(side)}, legacyKeys[side]...)
	for _, k := range keys {
		m, ok := raw[k].(map[string]any)
		if !ok {
			continue
		}
		for _, f := range altScoreFields {
			for _, name := range []string{f, "@" + f} {
				if v, ok := m[name]; ok {
					if s := parseInt(v); s != nil {
						return s
					}
				}
			}
		}
	}
	return nil
}

// 5) placar "H-A" no nível do evento, separado no primeiro hífen
func scoreString(raw map[string]any, side Side) *int {
	for _, k := range scoreStringFields {
		s, ok := raw[k].(string)
		if !ok {
			continue
		}
		s = strings.Trim(strings.TrimSpace(s), "[]() ")
		i := strings.Index(s, "-")
		if i < 0 {
			continue
		}
		part := s[:i]
		if side == Away {
			part = s[i+1:]
		}
		return parseInt(part)
	}
	return nil
}

func totalScore(v any) *int {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	if s, ok := m["@totalscore"]; ok {
		return parseInt(s)
	}
	return parseInt(m["totalscore"])
}

// parseInt aceita apenas valores inteiros; qualquer outra coisa vira nil
func parseInt(v any) *int {
	switch t := v.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		return &n
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return nil
		}
		n := int(t)
		return &n
	case int:
		return &t
	case json.Number:
		n, err := strconv.Atoi(t.String())
		if err != nil {
			return nil
		}
		return &n
	}
	return nil
}
