package engine

import (
	"errors"
	"testing"

	"github.com/radieske/bet-settlement-engine/internal/settlement/outcome"
	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
)

func TestSelectionSide(t *testing.T) {
	ev := parser.Event{Sport: parser.SportSoccer, HomeTeam: "Manchester United", AwayTeam: "Manchester City"}
	tests := []struct {
		selection string
		want      outcome.Winner
		ok        bool
	}{
		{"1", outcome.WinnerHome, true},
		{"X", outcome.WinnerDraw, true},
		{" 2 ", outcome.WinnerAway, true},
		{"Draw", outcome.WinnerDraw, true},
		{"manchester united", outcome.WinnerHome, true},
		{"Manchester City FC", outcome.WinnerAway, true},
		{"United", outcome.WinnerHome, true},
		{"Manchester", "", false},
		{"Over 2.5", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.selection, func(t *testing.T) {
			got, ok := SelectionSide(tt.selection, ev)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("SelectionSide(%q) = %q, %v; want %q, %v", tt.selection, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSelectionSide_CricketWinnerName(t *testing.T) {
	ev := parser.Event{Sport: parser.SportCricket, HomeTeam: "India", AwayTeam: "Australia", Winner: "India"}
	if got, ok := SelectionSide("India", ev); !ok || got != outcome.WinnerHome {
		t.Fatalf("got %q %v", got, ok)
	}
}

func TestSelectionWins(t *testing.T) {
	ev := parser.Event{HomeTeam: "Arsenal", AwayTeam: "Chelsea"}
	if won, err := SelectionWins("Arsenal", ev, outcome.WinnerHome); err != nil || !won {
		t.Fatalf("won=%v err=%v", won, err)
	}
	if won, err := SelectionWins("2", ev, outcome.WinnerHome); err != nil || won {
		t.Fatalf("won=%v err=%v", won, err)
	}
	if _, err := SelectionWins("BTTS yes", ev, outcome.WinnerHome); !errors.Is(err, ErrUnknownSelection) {
		t.Fatalf("err = %v", err)
	}
}
