package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LegResult é o resultado individual de uma perna
type LegResult string

const (
	LegUnset LegResult = ""
	LegWon   LegResult = "won"
	LegLost  LegResult = "lost"
	LegVoid  LegResult = "void"
)

// FlexString aceita string ou número no JSON (match_id legado vinha numérico)
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("match id: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// ComboSelection é uma perna gravada em bets.combo_selections.
// Campos desconhecidos são preservados na re-serialização.
type ComboSelection struct {
	MatchID   FlexString `json:"match_id"`
	MatchName string     `json:"match_name"`
	Selection string     `json:"selection"`
	Sport     string     `json:"sport,omitempty"`
	Timing    string     `json:"timing,omitempty"`
	Result    LegResult  `json:"result,omitempty"`
	Settled   bool       `json:"settled"`
	SettledAt *time.Time `json:"settled_at,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var legKeys = []string{"match_id", "match_name", "selection", "sport", "timing", "result", "settled", "settled_at"}

type legAlias ComboSelection

func (c *ComboSelection) UnmarshalJSON(b []byte) error {
	var a legAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, k := range legKeys {
		delete(all, k)
	}
	*c = ComboSelection(a)
	c.Result = LegResult(ParseStatus(string(c.Result)))
	if len(all) > 0 {
		c.Extra = all
	}
	return nil
}

func (c ComboSelection) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(legAlias(c))
	if err != nil || len(c.Extra) == 0 {
		return b, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for k, v := range c.Extra {
		if _, ok := all[k]; !ok {
			all[k] = v
		}
	}
	return json.Marshal(all)
}

// ParseLegs decodifica combo_selections; array vazio é tratado como malformado
func ParseLegs(raw []byte) ([]ComboSelection, error) {
	var legs []ComboSelection
	if err := json.Unmarshal(raw, &legs); err != nil {
		return nil, fmt.Errorf("decode combo selections: %w", err)
	}
	if len(legs) == 0 {
		return nil, fmt.Errorf("decode combo selections: no legs")
	}
	return legs, nil
}

// legSport resolve o esporte da perna: o próprio campo ou a posição i
// na string concatenada do pai ("Soccer, Basketball")
func legSport(leg ComboSelection, i int, parentSport string) string {
	if strings.TrimSpace(leg.Sport) != "" {
		return leg.Sport
	}
	parts := strings.Split(parentSport, ",")
	if i < len(parts) {
		return strings.TrimSpace(parts[i])
	}
	return ""
}

// ComboStatus calcula o status final depois que todas as pernas liquidaram:
// won se todas ganharam, void se todas foram anuladas, lost nos demais casos.
// Retorna pending enquanto houver perna aberta.
func ComboStatus(legs []ComboSelection) Status {
	won, void := 0, 0
	for _, l := range legs {
		if !l.Settled {
			return StatusPending
		}
		switch l.Result {
		case LegWon:
			won++
		case LegVoid:
			void++
		}
	}
	switch {
	case won == len(legs):
		return StatusWon
	case void == len(legs):
		return StatusVoid
	default:
		return StatusLost
	}
}

func legLabel(i int, leg ComboSelection) string {
	if leg.MatchName != "" {
		return leg.MatchName
	}
	return "leg " + strconv.Itoa(i)
}
