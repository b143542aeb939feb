package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/clbanning/mxj/v2"
)

// ErrUndecodable indica corpo que não é JSON nem XML
var ErrUndecodable = errors.New("feed body is neither json nor xml")

// Decode tenta JSON primeiro e cai para XML independente do content-type.
// O provedor às vezes serve XML com content-type de JSON.
func Decode(body []byte) (any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrUndecodable
	}
	var jerr error
	if trimmed[0] != '<' {
		var v any
		if jerr = json.Unmarshal(trimmed, &v); jerr == nil {
			return v, nil
		}
	}
	m, err := mxj.NewMapXml(trimmed)
	if err != nil {
		if jerr != nil {
			return nil, fmt.Errorf("%w: json: %v; xml: %v", ErrUndecodable, jerr, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return normalizeXML(map[string]any(m)), nil
}

// normalizeXML troca o prefixo de atributo do mxj ("-") pelo "@" esperado pelos parsers
func normalizeXML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if strings.HasPrefix(k, "-") {
				k = "@" + k[1:]
			}
			out[k] = normalizeXML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeXML(val)
		}
		return out
	default:
		return v
	}
}
