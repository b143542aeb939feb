package catalog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/radieske/bet-settlement-engine/internal/settlement/feed"
	"github.com/radieske/bet-settlement-engine/internal/settlement/outcome"
	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func TestDaysAgo(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"home", 0, true},
		{"livescore", 0, true},
		{"d-1", 1, true},
		{"d-7", 7, true},
		{"d-8", 0, false},
		{"d-0", 0, false},
		{"x-1", 0, false},
		{"1", 0, false},
	}
	for _, tt := range tests {
		got, ok := DaysAgo(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DaysAgo(%q) = %d,%v want %d,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPayload_JSONParsesAndResolves(t *testing.T) {
	c := Default()
	b, err := json.Marshal(JSON(c.Payload("soccernew", 0, now)))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := feed.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	evs := parser.ParseBySport(parser.SportSoccer, raw)
	if len(evs) != 3 {
		t.Fatalf("got %d events, want 3", len(evs))
	}
	byID := map[string]parser.Event{}
	for _, ev := range evs {
		byID[ev.ID] = ev
	}
	res := outcome.Resolve(byID["5001"])
	if !res.Completed || res.Winner != outcome.WinnerHome {
		t.Errorf("5001 = %+v, want completed home win", res)
	}
	if r := outcome.Resolve(byID["5002"]); !r.Cancelled {
		t.Errorf("5002 = %+v, want cancelled", r)
	}
	if r := outcome.Resolve(byID["5003"]); r.Settleable() {
		t.Errorf("5003 = %+v, want in progress", r)
	}
	if byID["5001"].League != "England: Premier League" {
		t.Errorf("league = %q", byID["5001"].League)
	}
}

func TestXML_DecodesThroughFeedFallback(t *testing.T) {
	c := Default()
	if !c.ServesXML(2) || c.ServesXML(1) {
		t.Fatal("default catalog should serve day 2 as xml only")
	}
	b, err := XML(c.Payload("soccernew", 2, now))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := feed.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	evs := parser.ParseBySport(parser.SportSoccer, raw)
	if len(evs) != 1 || evs[0].ID != "5005" {
		t.Fatalf("events = %+v", evs)
	}
	if r := outcome.Resolve(evs[0]); r.Winner != outcome.WinnerAway {
		t.Errorf("winner = %q, want away", r.Winner)
	}
}

func TestPayload_EmptyNamespace(t *testing.T) {
	p := Default().Payload("hockey", 0, now)
	cats := p["scores"].(map[string]any)["category"].([]any)
	if len(cats) != 0 {
		t.Fatalf("categories = %d, want 0", len(cats))
	}
}

func TestLoad(t *testing.T) {
	c, err := Load([]byte(`
matches:
  - id: "1"
    sport: soccernew
    league: Test
    home: A
    away: B
    status: FT
    home_score: 1
    away_score: 0
    days_ago: 3
xml_days: [3]
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Matches) != 1 || *c.Matches[0].HomeScore != 1 || c.Matches[0].DaysAgo != 3 || !c.ServesXML(3) {
		t.Fatalf("catalog = %+v", c)
	}

	if _, err := Load([]byte("matches:\n  - id: \"1\"\n")); err == nil {
		t.Fatal("expected error for incomplete match")
	}
}
