package parser

// containerKeys são verificadas em ordem para achar a sequência de eventos
var containerKeys = []string{"events", "matches", "fixtures", "data", "results", "games"}

// nestingKeys são os níveis de agrupamento do provedor (scores > category > matches > match)
var nestingKeys = []string{"scores", "category", "match", "tournament", "league"}

const maxDepth = 8

type record struct {
	data     map[string]any
	category string
}

// collect percorre um payload de formato incerto e devolve os registros de evento
func collect(payload any) []record {
	var out []record
	walk(payload, "", 0, &out)
	return out
}

func walk(v any, category string, depth int, out *[]record) {
	if depth > maxDepth {
		return
	}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			walk(item, category, depth+1, out)
		}
	case map[string]any:
		if isEvent(t) {
			*out = append(*out, record{data: t, category: category})
			return
		}
		found := false
		for _, k := range containerKeys {
			if c, ok := t[k]; ok {
				found = true
				walk(c, categoryOf(t, category), depth+1, out)
			}
		}
		for _, k := range nestingKeys {
			if c, ok := t[k]; ok {
				if _, isMap := c.(map[string]any); isMap || isList(c) {
					found = true
					walk(c, categoryOf(t, category), depth+1, out)
				}
			}
		}
		// payload que é ele próprio um único evento
		if !found && hasID(t) {
			*out = append(*out, record{data: t, category: category})
		}
	}
}

// isEvent exige id e um par de times, o que separa partidas de categorias
func isEvent(m map[string]any) bool {
	if !hasID(m) {
		return false
	}
	h, a := ExtractTeams(m)
	return h != "" && a != ""
}

func hasID(m map[string]any) bool {
	return first(m, idFields) != ""
}

func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

// categoryOf herda a categoria do nível anterior quando o mapa não declara nome
func categoryOf(m map[string]any, parent string) string {
	if _, ok := m["matches"]; ok {
		if n := first(m, []string{"@name", "name"}); n != "" {
			return n
		}
	}
	if _, ok := m["match"]; ok {
		if n := first(m, []string{"@name", "name"}); n != "" {
			return n
		}
	}
	return parent
}
