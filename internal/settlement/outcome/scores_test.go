package outcome

import "testing"

func intp(n int) *int { return &n }

func TestTeamScore_Tiers(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		home *int
		away *int
	}{
		{"flat", map[string]any{"home_score": "2", "away_score": 1.0}, intp(2), intp(1)},
		{"nested totalscore", map[string]any{
			"home": map[string]any{"@totalscore": "101"},
			"away": map[string]any{"@totalscore": "99"},
		}, intp(101), intp(99)},
		{"legacy localteam/awayteam", map[string]any{
			"localteam": map[string]any{"@totalscore": "3"},
			"awayteam":  map[string]any{"@totalscore": "4"},
		}, intp(3), intp(4)},
		{"alternative goals field", map[string]any{
			"localteam":   map[string]any{"@name": "Arsenal", "@goals": "2"},
			"visitorteam": map[string]any{"@name": "Chelsea", "@goals": "1"},
		}, intp(2), intp(1)},
		{"alternative runs field", map[string]any{
			"home": map[string]any{"runs": 5.0},
			"away": map[string]any{"r": "3"},
		}, intp(5), intp(3)},
		{"score string", map[string]any{"score": "3-0"}, intp(3), intp(0)},
		{"bracketed score string", map[string]any{"ft_score": "[1-1]"}, intp(1), intp(1)},
		{"flat wins over string", map[string]any{"home_score": "7", "away_score": "6", "score": "1-0"}, intp(7), intp(6)},
		{"malformed flat falls through", map[string]any{"home_score": "?", "score": "2-2"}, intp(2), intp(2)},
		{"malformed string", map[string]any{"score": "a-b"}, nil, nil},
		{"no hyphen", map[string]any{"score": "2:1"}, nil, nil},
		{"trailing hyphen", map[string]any{"score": "2-"}, intp(2), nil},
		{"fractional", map[string]any{"home_score": 1.5, "away_score": "x"}, nil, nil},
		{"empty", map[string]any{}, nil, nil},
		{"nil map", nil, nil, nil},
		{"wrong types", map[string]any{"home": "text", "localteam": []any{1}, "score": 12.0}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertScore(t, "home", TeamScore(tt.raw, Home), tt.home)
			assertScore(t, "away", TeamScore(tt.raw, Away), tt.away)
		})
	}
}

func assertScore(t *testing.T, side string, got, want *int) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s score = %v, want %v", side, fmtInt(got), fmtInt(want))
	case *got != *want:
		t.Errorf("%s score = %d, want %d", side, *got, *want)
	}
}

func fmtInt(p *int) any {
	if p == nil {
		return "nil"
	}
	return *p
}
