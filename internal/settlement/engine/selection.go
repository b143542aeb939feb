package engine

import (
	"strings"

	"github.com/radieske/bet-settlement-engine/internal/settlement/locator"
	"github.com/radieske/bet-settlement-engine/internal/settlement/outcome"
	"github.com/radieske/bet-settlement-engine/internal/settlement/parser"
)

var symbolicSides = map[string]outcome.Winner{
	"1":    outcome.WinnerHome,
	"home": outcome.WinnerHome,
	"w1":   outcome.WinnerHome,
	"2":    outcome.WinnerAway,
	"away": outcome.WinnerAway,
	"w2":   outcome.WinnerAway,
	"x":    outcome.WinnerDraw,
	"draw": outcome.WinnerDraw,
	"tie":  outcome.WinnerDraw,
	"d":    outcome.WinnerDraw,
}

// SelectionSide traduz o palpite livre para casa/fora/empate.
// Nomes de times casam por igualdade e depois por contenção sem ambiguidade.
func SelectionSide(selection string, ev parser.Event) (outcome.Winner, bool) {
	s := locator.Normalize(selection)
	if s == "" {
		return "", false
	}
	if w, ok := symbolicSides[s]; ok {
		return w, true
	}
	home, away := locator.Normalize(ev.HomeTeam), locator.Normalize(ev.AwayTeam)
	switch {
	case home != "" && s == home:
		return outcome.WinnerHome, true
	case away != "" && s == away:
		return outcome.WinnerAway, true
	}
	inHome := home != "" && (strings.Contains(home, s) || strings.Contains(s, home))
	inAway := away != "" && (strings.Contains(away, s) || strings.Contains(s, away))
	switch {
	case inHome && !inAway:
		return outcome.WinnerHome, true
	case inAway && !inHome:
		return outcome.WinnerAway, true
	}
	// críquete: o palpite pode citar o nome do vencedor como o feed grava
	if ev.Sport == parser.SportCricket && ev.Winner != "" {
		w := locator.Normalize(ev.Winner)
		if w == s || strings.Contains(w, s) || strings.Contains(s, w) {
			switch {
			case home != "" && (strings.Contains(w, home) || strings.Contains(home, w)):
				return outcome.WinnerHome, true
			case away != "" && (strings.Contains(w, away) || strings.Contains(away, w)):
				return outcome.WinnerAway, true
			}
		}
	}
	return "", false
}

// SelectionWins indica se o palpite ganhou dado o vencedor resolvido
func SelectionWins(selection string, ev parser.Event, winner outcome.Winner) (bool, error) {
	side, ok := SelectionSide(selection, ev)
	if !ok {
		return false, ErrUnknownSelection
	}
	return side == winner, nil
}
