package outcome

import (
	"testing"

	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw       string
		completed bool
		cancelled bool
	}{
		{"FT", true, false},
		{" Full Time ", true, false},
		{"After Extra Time", true, false},
		{"AET", true, false},
		{"Pen", true, false},
		{"Game Over", true, false},
		{"105", true, false},
		{"90", true, false},
		{"45", false, false},
		{"HT", false, false},
		{"Postp.", false, true},
		{"CANCL.", false, true},
		{"wo", false, true},
		{"", false, false},
		{"in progress", false, false},
	}
	for _, tt := range tests {
		c, x := NormalizeStatus(tt.raw)
		if c != tt.completed || x != tt.cancelled {
			t.Errorf("NormalizeStatus(%q) = (%v, %v), want (%v, %v)", tt.raw, c, x, tt.completed, tt.cancelled)
		}
	}
}

func TestResolve_Standard(t *testing.T) {
	tests := []struct {
		name       string
		ev         parser.Event
		settleable bool
		winner     Winner
	}{
		{"home win", parser.Event{Sport: parser.SportSoccer, Status: "FT", Raw: map[string]any{"home_score": 2.0, "away_score": 1.0}}, true, WinnerHome},
		{"away win", parser.Event{Sport: parser.SportBasketball, Status: "Final", Raw: map[string]any{"score": "98-103"}}, true, WinnerAway},
		{"draw", parser.Event{Sport: parser.SportSoccer, Status: "FT", Raw: map[string]any{"score": "1-1"}}, true, WinnerDraw},
		{"missing score", parser.Event{Sport: parser.SportSoccer, Status: "FT", Raw: map[string]any{"home_score": 1.0}}, false, WinnerNone},
		{"in play", parser.Event{Sport: parser.SportSoccer, Status: "67", Raw: map[string]any{"score": "1-0"}}, false, WinnerNone},
		{"postponed", parser.Event{Sport: parser.SportSoccer, Status: "Postp.", Raw: map[string]any{}}, true, WinnerNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Resolve(tt.ev)
			if r.Settleable() != tt.settleable {
				t.Errorf("Settleable = %v, want %v (%+v)", r.Settleable(), tt.settleable, r)
			}
			if r.Winner != tt.winner {
				t.Errorf("Winner = %q, want %q", r.Winner, tt.winner)
			}
		})
	}
}

func TestResolve_Cricket(t *testing.T) {
	tests := []struct {
		name   string
		ev     parser.Event
		winner Winner
	}{
		{
			name: "winner flag beats higher score",
			ev: parser.Event{Sport: parser.SportCricket, Status: "Finished", HomeTeam: "India", AwayTeam: "Australia", Raw: map[string]any{
				"localteam":   map[string]any{"@name": "India", "@totalscore": "180/9", "@winner": "false"},
				"visitorteam": map[string]any{"@name": "Australia", "@totalscore": "176/3", "@winner": "true"},
			}},
			winner: WinnerAway,
		},
		{
			name: "comment won uses higher runs",
			ev: parser.Event{Sport: parser.SportCricket, Status: "Finished", HomeTeam: "India", AwayTeam: "Australia", Raw: map[string]any{
				"localteam":   map[string]any{"@totalscore": "245/6"},
				"visitorteam": map[string]any{"@totalscore": "201"},
				"comment":     "India won by 44 runs",
			}},
			winner: WinnerHome,
		},
		{
			name: "comment won by team name without runs",
			ev: parser.Event{Sport: parser.SportCricket, Status: "Finished", HomeTeam: "India", AwayTeam: "Australia", Raw: map[string]any{
				"comment": "Australia won by 5 wickets",
			}},
			winner: WinnerAway,
		},
		{
			name: "comment draw",
			ev: parser.Event{Sport: parser.SportCricket, Status: "Finished", HomeTeam: "England", AwayTeam: "India", Raw: map[string]any{
				"localteam":   map[string]any{"@totalscore": "300 & 150/4"},
				"visitorteam": map[string]any{"@totalscore": "410"},
				"comment":     "Match drawn",
			}},
			winner: WinnerDraw,
		},
		{
			name: "score comparison last resort with innings summed",
			ev: parser.Event{Sport: parser.SportCricket, Status: "Finished", Raw: map[string]any{
				"localteam":   map[string]any{"@totalscore": "300 & 150/4"},
				"visitorteam": map[string]any{"@totalscore": "410"},
			}},
			winner: WinnerHome,
		},
		{
			name:   "named winner field",
			ev:     parser.Event{Sport: parser.SportCricket, Status: "Finished", HomeTeam: "India", AwayTeam: "Australia", Winner: "india", Raw: map[string]any{}},
			winner: WinnerHome,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.ev).Winner; got != tt.winner {
				t.Errorf("Winner = %q, want %q", got, tt.winner)
			}
		})
	}
}
