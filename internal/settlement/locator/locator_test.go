package locator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/radieske/bet-settlement-engine/internal/settlement/feed"
	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
)

func day(s string) *time.Time {
	t, _ := time.Parse("2006-01-02 15:04", s)
	return &t
}

func sampleEvents() []parser.Event {
	return []parser.Event{
		{ID: "7", Sport: parser.SportSoccer, League: "Premier League", HomeTeam: "Arsenal", AwayTeam: "Chelsea", StartTime: day("2024-03-10 15:00")},
		{ID: "8812", Sport: parser.SportSoccer, League: "La Liga", HomeTeam: "Real Madrid", AwayTeam: "Sevilla", StartTime: day("2024-03-11 20:00")},
		{ID: "evt_nodate", Sport: parser.SportBasketball, HomeTeam: "Lakers", AwayTeam: "Celtics"},
	}
}

func TestLocate(t *testing.T) {
	idx := NewIndex(sampleEvents())
	created, _ := time.Parse("2006-01-02", "2024-03-10")

	tests := []struct {
		name   string
		target Target
		wantID string
	}{
		{"exact id", Target{MatchID: "8812"}, "8812"},
		{"numeric normalized", Target{MatchID: "007"}, "7"},
		{"composite by sport and day", Target{MatchName: "arsenal  vs CHELSEA", Sport: parser.SportSoccer, CreatedAt: created}, "7"},
		{"composite by league", Target{MatchName: "Real Madrid vs Sevilla", League: "la liga"}, "8812"},
		{"dateless fallback", Target{MatchName: "Lakers vs Celtics", Sport: parser.SportBasketball, CreatedAt: created}, "evt_nodate"},
		{"id miss falls to composite", Target{MatchID: "999", MatchName: "Arsenal vs Chelsea", Sport: parser.SportSoccer}, "7"},
		{"reserved id skips id step", Target{MatchID: "match_7", MatchName: "Arsenal vs Chelsea", Sport: parser.SportSoccer}, "7"},
		{"not found", Target{MatchID: "123", MatchName: "Everton vs Fulham", Sport: parser.SportSoccer}, ""},
		{"no separator", Target{MatchName: "Arsenal - Chelsea", Sport: parser.SportSoccer}, ""},
		{"wrong sport scope", Target{MatchName: "Arsenal vs Chelsea", Sport: parser.SportTennis}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Locate(tt.target, idx)
			got := ""
			if ev != nil {
				got = ev.ID
			}
			if got != tt.wantID {
				t.Fatalf("Locate = %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestLocate_RepeatedPairing(t *testing.T) {
	series := []parser.Event{
		{ID: "556", Sport: parser.SportBaseball, League: "MLB", HomeTeam: "Yankees", AwayTeam: "Red Sox", Status: "Final", StartTime: day("2026-10-11 19:05")},
		{ID: "555", Sport: parser.SportBaseball, League: "MLB", HomeTeam: "Yankees", AwayTeam: "Red Sox", Status: "Final", StartTime: day("2026-10-10 19:05")},
	}
	idx := NewIndex(series)
	at := func(s string) time.Time { return *day(s) }

	tests := []struct {
		name    string
		created time.Time
		date    *time.Time
		wantID  string
	}{
		{"bet placed after every game in history", at("2026-10-13 09:00"), nil, ""},
		{"bet placed between games", at("2026-10-11 10:00"), nil, "556"},
		{"same day key", at("2026-10-10 12:00"), nil, "555"},
		{"two games after placement stay ambiguous", at("2026-10-09 12:00"), nil, ""},
		{"stored match date picks the game", at("2026-10-09 12:00"), day("2026-10-11 00:00"), "556"},
		{"stored match date before placement is ignored", at("2026-10-11 12:00"), day("2026-10-10 00:00"), "556"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Locate(Target{MatchName: "Yankees vs Red Sox", Sport: parser.SportBaseball, CreatedAt: tt.created, MatchDate: tt.date}, idx)
			got := ""
			if ev != nil {
				got = ev.ID
				if ev.StartTime != nil && dayOf(*ev.StartTime) < dayOf(tt.created) {
					t.Fatalf("bet created %s matched game played %s", dayOf(tt.created), dayOf(*ev.StartTime))
				}
			}
			if got != tt.wantID {
				t.Fatalf("Locate = %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestLocate_SameEventFromTwoFeedsIsNotAmbiguous(t *testing.T) {
	ev := parser.Event{ID: "77", Sport: parser.SportHockey, HomeTeam: "Rangers", AwayTeam: "Bruins"}
	idx := NewIndex([]parser.Event{ev}, []parser.Event{ev})
	if got := Locate(Target{MatchName: "Rangers vs Bruins", Sport: parser.SportHockey}, idx); got == nil || got.ID != "77" {
		t.Fatalf("Locate = %+v, want 77", got)
	}
}

func TestSplitMatchName(t *testing.T) {
	h, a, ok := SplitMatchName("Manchester United vs Liverpool")
	if !ok || h != "Manchester United" || a != "Liverpool" {
		t.Fatalf("got %q %q %v", h, a, ok)
	}
	if _, _, ok := SplitMatchName("vs Liverpool"); ok {
		t.Fatal("expected failure without home team")
	}
}

type fakeFetcher struct {
	payloads map[feed.Endpoint]any
	calls    []feed.Endpoint
	err      error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ parser.Sport, ep feed.Endpoint) (any, error) {
	f.calls = append(f.calls, ep)
	if f.err != nil {
		return nil, f.err
	}
	return f.payloads[ep], nil
}

func matchPayload(id, home, away string) map[string]any {
	return map[string]any{"matches": []any{map[string]any{"id": id, "home_team": home, "away_team": away}}}
}

func TestSearchRemote_StopsWhenFound(t *testing.T) {
	f := &fakeFetcher{payloads: map[feed.Endpoint]any{
		feed.Day(2): matchPayload("555", "Arsenal", "Chelsea"),
	}}
	s := NewSearcher(f, 7, nil)

	ev, err := s.SearchRemote(context.Background(), Target{MatchID: "555", Sport: parser.SportSoccer})
	if err != nil || ev == nil || ev.ID != "555" {
		t.Fatalf("got %+v, %v", ev, err)
	}
	want := []feed.Endpoint{feed.EndpointRecent, feed.Day(1), feed.Day(2)}
	if len(f.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", f.calls, want)
	}
	for i := range want {
		if f.calls[i] != want[i] {
			t.Fatalf("call %d = %s, want %s", i, f.calls[i], want[i])
		}
	}
}

func TestSearchRemote_ReservedIDNeverFetches(t *testing.T) {
	for _, id := range []string{"combo_123", "match_abc"} {
		f := &fakeFetcher{}
		s := NewSearcher(f, 7, nil)
		ev, err := s.SearchRemote(context.Background(), Target{MatchID: id, Sport: parser.SportSoccer})
		if !errors.Is(err, ErrReservedID) || ev != nil {
			t.Fatalf("%s: got %v, %v", id, ev, err)
		}
		if len(f.calls) != 0 {
			t.Fatalf("%s: fetched %v", id, f.calls)
		}
	}
}

func TestSearchRemote_CricketUsesLiveScore(t *testing.T) {
	f := &fakeFetcher{payloads: map[feed.Endpoint]any{}}
	s := NewSearcher(f, 7, nil)
	ev, _ := s.SearchRemote(context.Background(), Target{MatchID: "1", Sport: parser.SportCricket})
	if ev != nil {
		t.Fatalf("unexpected event %+v", ev)
	}
	if len(f.calls) != 1 || f.calls[0] != feed.EndpointLiveScore {
		t.Fatalf("calls = %v", f.calls)
	}
}

func TestHistory_FetchErrorsAreEmpty(t *testing.T) {
	f := &fakeFetcher{err: errors.New("timeout")}
	s := NewSearcher(f, 3, nil)
	if evs := s.History(context.Background(), parser.SportSoccer); len(evs) != 0 {
		t.Fatalf("expected no events, got %d", len(evs))
	}
	if len(f.calls) != 4 {
		t.Fatalf("expected 4 endpoint calls, got %d", len(f.calls))
	}
}

func TestSportFor(t *testing.T) {
	tests := []struct {
		stored, match string
		want          parser.Sport
	}{
		{"Basketball", "Arsenal vs Chelsea", parser.SportBasketball},
		{"", "Lakers vs Celtics", parser.SportBasketball},
		{"", "India vs Pakistan", parser.SportCricket},
		{"", "Arsenal vs Chelsea", parser.SportSoccer},
		{"Volleyball", "Arsenal vs Chelsea", parser.Sport("volleyball")},
		{" Beach  Volleyball ", "Lakers vs Celtics", parser.Sport("beach_volleyball")},
		{"   ", "Lakers vs Celtics", parser.SportBasketball},
	}
	for _, tt := range tests {
		if got := SportFor(tt.stored, tt.match); got != tt.want {
			t.Errorf("SportFor(%q, %q) = %q, want %q", tt.stored, tt.match, got, tt.want)
		}
	}
}
