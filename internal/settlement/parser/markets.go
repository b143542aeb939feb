package parser

import "strings"

// Catálogo fixo de mercados canônicos
const (
	MarketMatchResult     = "match_result"
	MarketMoneyline       = "moneyline"
	MarketDoubleChance    = "double_chance"
	MarketDrawNoBet       = "draw_no_bet"
	MarketBothTeamsScore  = "both_teams_to_score"
	MarketTotals          = "totals"
	MarketAsianHandicap   = "asian_handicap"
	MarketSpread          = "spread"
	MarketCorrectScore    = "correct_score"
	MarketOddEven         = "odd_even"
	MarketFirstHalfResult = "first_half_result"
	MarketSetBetting      = "set_betting"
)

// CanonicalMarkets mapeia cada mercado canônico para seu spec estrutural
var CanonicalMarkets = map[string]MarketSpec{
	MarketMatchResult:     Spec3Way,
	MarketMoneyline:       Spec2Way,
	MarketDoubleChance:    Spec3Way,
	MarketDrawNoBet:       Spec2Way,
	MarketBothTeamsScore:  SpecYesNo,
	MarketTotals:          SpecTotals,
	MarketAsianHandicap:   SpecHandicap,
	MarketSpread:          SpecHandicap,
	MarketCorrectScore:    SpecGrid,
	MarketOddEven:         Spec2Way,
	MarketFirstHalfResult: Spec3Way,
	MarketSetBetting:      SpecGrid,
}

// MarketAliases mapeia nomes livres (já normalizados por cleanName) para o mercado canônico
var MarketAliases = map[string]string{
	"1x2":                  MarketMatchResult,
	"moneyline_3way":       MarketMatchResult,
	"moneyline 3way":       MarketMatchResult,
	"3way result":          MarketMatchResult,
	"3-way result":         MarketMatchResult,
	"full time result":     MarketMatchResult,
	"fulltime result":      MarketMatchResult,
	"match result":         MarketMatchResult,
	"match odds":           MarketMatchResult,
	"h2h_3way":             MarketMatchResult,
	"moneyline":            MarketMoneyline,
	"money line":           MarketMoneyline,
	"h2h":                  MarketMoneyline,
	"home/away":            MarketMoneyline,
	"match winner":         MarketMoneyline,
	"winner":               MarketMoneyline,
	"to win":               MarketMoneyline,
	"to win the match":     MarketMoneyline,
	"double chance":        MarketDoubleChance,
	"draw no bet":          MarketDrawNoBet,
	"dnb":                  MarketDrawNoBet,
	"both teams to score":  MarketBothTeamsScore,
	"both teams score":     MarketBothTeamsScore,
	"btts":                 MarketBothTeamsScore,
	"goal/no goal":         MarketBothTeamsScore,
	"gg/ng":                MarketBothTeamsScore,
	"over/under":           MarketTotals,
	"over under":           MarketTotals,
	"total":                MarketTotals,
	"totals":               MarketTotals,
	"goals over/under":     MarketTotals,
	"total goals":          MarketTotals,
	"total points":         MarketTotals,
	"total runs":           MarketTotals,
	"total games":          MarketTotals,
	"asian handicap":       MarketAsianHandicap,
	"handicap":             MarketAsianHandicap,
	"ah":                   MarketAsianHandicap,
	"spread":               MarketSpread,
	"spreads":              MarketSpread,
	"point spread":         MarketSpread,
	"run line":             MarketSpread,
	"puck line":            MarketSpread,
	"correct score":        MarketCorrectScore,
	"exact score":          MarketCorrectScore,
	"odd/even":             MarketOddEven,
	"odd even":             MarketOddEven,
	"1st half result":      MarketFirstHalfResult,
	"first half result":    MarketFirstHalfResult,
	"half time result":     MarketFirstHalfResult,
	"ht result":            MarketFirstHalfResult,
	"set betting":          MarketSetBetting,
	"correct set score":    MarketSetBetting,
}

// sportMarkets restringe os mercados aceitos por esporte.
// Esportes sem entrada aceitam todo o catálogo.
var sportMarkets = map[Sport][]string{
	SportSoccer: {
		MarketMatchResult, MarketDoubleChance, MarketDrawNoBet, MarketBothTeamsScore,
		MarketTotals, MarketAsianHandicap, MarketCorrectScore, MarketOddEven, MarketFirstHalfResult,
	},
	SportBasketball:       {MarketMoneyline, MarketSpread, MarketTotals, MarketOddEven, MarketFirstHalfResult},
	SportTennis:           {MarketMoneyline, MarketSetBetting, MarketTotals, MarketAsianHandicap},
	SportHockey:           {MarketMatchResult, MarketMoneyline, MarketSpread, MarketTotals, MarketDoubleChance},
	SportBaseball:         {MarketMoneyline, MarketSpread, MarketTotals},
	SportAmericanFootball: {MarketMoneyline, MarketSpread, MarketTotals},
	SportCricket:          {MarketMatchResult, MarketMoneyline, MarketTotals},
	SportMMA:              {MarketMoneyline},
	SportBoxing:           {MarketMoneyline, MarketMatchResult},
}

// cleanName reduz um nome de mercado à forma usada nas chaves de MarketAliases
func cleanName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeMarketName resolve um nome livre para o mercado canônico.
// Nome desconhecido retorna ("", false), nunca um valor inventado.
func NormalizeMarketName(raw string) (string, bool) {
	s := cleanName(raw)
	if s == "" {
		return "", false
	}
	if _, ok := CanonicalMarkets[s]; ok {
		return s, true
	}
	if c, ok := MarketAliases[s]; ok {
		return c, true
	}
	// variantes com "_" no lugar de espaço
	if c, ok := MarketAliases[strings.ReplaceAll(s, "_", " ")]; ok {
		return c, true
	}
	return "", false
}

// SpecFor retorna o spec estrutural do mercado canônico
func SpecFor(market string) MarketSpec {
	if s, ok := CanonicalMarkets[market]; ok {
		return s
	}
	return SpecUnknown
}

// MarketAllowed indica se o mercado canônico é oferecido para o esporte
func MarketAllowed(sport Sport, market string) bool {
	allowed, ok := sportMarkets[sport]
	if !ok {
		_, known := CanonicalMarkets[market]
		return known
	}
	for _, m := range allowed {
		if m == market {
			return true
		}
	}
	return false
}
