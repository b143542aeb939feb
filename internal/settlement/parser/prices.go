package parser

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseDecimal converte uma odd do feed para decimal com 4 casas.
// Aceita odd decimal ("1.85", 1.85) ou americana ("+200", "-150", -150).
// Qualquer outro valor retorna nil.
func ParseDecimal(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return fromNumber(t, false)
	case float32:
		return fromNumber(float64(t), false)
	case int:
		return fromNumber(float64(t), false)
	case int64:
		return fromNumber(float64(t), false)
	case json.Number:
		return ParseDecimal(t.String())
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		signed := s[0] == '+' || s[0] == '-'
		f, err := strconv.ParseFloat(strings.TrimPrefix(s, "+"), 64)
		if err != nil {
			return nil
		}
		return fromNumber(f, signed)
	case map[string]any:
		// XML: <odd value="1.85"/> vira {"@value": "1.85"}
		for _, k := range []string{"@value", "value", "#text", "price", "odds"} {
			if x, ok := t[k]; ok {
				return ParseDecimal(x)
			}
		}
	}
	return nil
}

// fromNumber aplica a regra americano/decimal. Números com sinal explícito,
// negativos ou inteiros >= 100 são tratados como odds americanas.
func fromNumber(f float64, signed bool) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	american := signed || f < 0 || (f >= 100 && f == math.Trunc(f))
	var dec float64
	switch {
	case american && f > 0:
		dec = 1 + f/100
	case american && f < 0:
		dec = 1 + 100/math.Abs(f)
	case american:
		return nil
	default:
		dec = f
	}
	if dec <= 1 {
		return nil
	}
	r := math.Round(dec*10000) / 10000
	return &r
}

// parseFloat lê números do feed (string, float ou map XML) sem regras de odd
func parseFloat(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case int:
		f := float64(t)
		return &f
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(t), "+"), 64)
		if err != nil {
			return nil
		}
		return &f
	case map[string]any:
		for _, k := range []string{"@value", "value", "#text"} {
			if x, ok := t[k]; ok {
				return parseFloat(x)
			}
		}
	}
	return nil
}
