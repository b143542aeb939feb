package parser

import (
	"regexp"
	"sort"
	"strings"
)

// outcomeAliases normaliza rótulos de outcome (comparação sem caixa e sem espaços nas bordas)
var outcomeAliases = map[string]string{
	"1":     "home",
	"home":  "home",
	"w1":    "home",
	"x":     "draw",
	"draw":  "draw",
	"tie":   "draw",
	"2":     "away",
	"away":  "away",
	"w2":    "away",
	"over":  "over",
	"o":     "over",
	"under": "under",
	"u":     "under",
	"odd":   "odd",
	"even":  "even",
	"yes":   "yes",
	"no":    "no",
	"gg":    "yes",
	"ng":    "no",
	"1x":    "home_draw",
	"12":    "home_away",
	"x2":    "draw_away",
}

// NormalizeOutcome casa o rótulo com a tabela de aliases.
// Rótulos desconhecidos mantêm o texto original em minúsculas.
func NormalizeOutcome(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	if k, ok := outcomeAliases[s]; ok {
		return k
	}
	return s
}

var (
	lineRe  = regexp.MustCompile(`([+-]?\d+(?:\.\d+)?)\s*$`)
	scoreRe = regexp.MustCompile(`^\s*(\d+)\s*[-:]\s*(\d+)\s*$`)
)

var outcomeNameFields = []string{"name", "@name", "label", "outcome", "selection", "type", "@type"}
var outcomePriceFields = []string{"price", "odds", "odd", "value", "@value", "@odd", "decimal", "american"}
var outcomeLineFields = []string{"line", "@line", "handicap", "@handicap", "total", "@total", "point", "points", "hcp"}

// parseOutcomes aplica a estratégia do spec do mercado
func parseOutcomes(spec MarketSpec, raw any) []Outcome {
	var out []Outcome
	for _, o := range outcomeList(raw) {
		oc, ok := buildOutcome(spec, o)
		if ok {
			out = append(out, oc)
		}
	}
	if spec == SpecYesNo {
		return forceYesNo(out)
	}
	return out
}

// outcomeList aceita lista de objetos ou mapa rótulo->preço
func outcomeList(raw any) []map[string]any {
	switch t := raw.(type) {
	case []any:
		var out []map[string]any
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]any:
		// um único outcome serializado como objeto
		if first(t, outcomeNameFields) != "" {
			return []map[string]any{t}
		}
		labels := make([]string, 0, len(t))
		for label := range t {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		var out []map[string]any
		for _, label := range labels {
			price := t[label]
			if m, ok := price.(map[string]any); ok {
				cp := map[string]any{"name": label}
				for k, v := range m {
					cp[k] = v
				}
				out = append(out, cp)
				continue
			}
			out = append(out, map[string]any{"name": label, "price": price})
		}
		return out
	}
	return nil
}

func buildOutcome(spec MarketSpec, m map[string]any) (Outcome, bool) {
	label := first(m, outcomeNameFields)
	if label == "" {
		return Outcome{}, false
	}
	var price *float64
	for _, k := range outcomePriceFields {
		if v, ok := m[k]; ok {
			if price = ParseDecimal(v); price != nil {
				break
			}
		}
	}
	oc := Outcome{Label: label, Price: price}

	switch spec {
	case SpecTotals, SpecHandicap:
		for _, k := range outcomeLineFields {
			if v, ok := m[k]; ok {
				if l := parseFloat(v); l != nil {
					oc.Line = l
					break
				}
			}
		}
		name := label
		// rótulos do tipo "Over 2.5" ou "Arsenal -1.5"
		if loc := lineRe.FindStringSubmatchIndex(label); loc != nil && loc[0] > 0 {
			if oc.Line == nil {
				oc.Line = parseFloat(label[loc[2]:loc[3]])
			}
			name = strings.TrimSpace(label[:loc[0]])
		}
		oc.Key = NormalizeOutcome(name)
	case SpecGrid:
		if sm := scoreRe.FindStringSubmatch(label); sm != nil {
			oc.Key = sm[1] + "-" + sm[2]
		} else {
			oc.Key = NormalizeOutcome(label)
		}
	default:
		oc.Key = NormalizeOutcome(label)
	}
	return oc, true
}

// forceYesNo mantém apenas o par yes/no, no máximo um de cada
func forceYesNo(in []Outcome) []Outcome {
	var yes, no *Outcome
	for i := range in {
		switch in[i].Key {
		case "yes", "home":
			if yes == nil {
				o := in[i]
				o.Key = "yes"
				yes = &o
			}
		case "no", "away":
			if no == nil {
				o := in[i]
				o.Key = "no"
				no = &o
			}
		}
	}
	var out []Outcome
	if yes != nil {
		out = append(out, *yes)
	}
	if no != nil {
		out = append(out, *no)
	}
	return out
}
