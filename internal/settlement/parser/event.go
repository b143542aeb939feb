package parser

import "time"

// Event é a forma canônica de uma partida vinda do feed.
// Reconstruído a cada ciclo de liquidação e nunca persistido.
type Event struct {
	ID        string
	Sport     Sport
	League    string
	Category  string
	HomeTeam  string
	AwayTeam  string
	StartTime *time.Time
	Status    string
	Markets   []Market

	// Campos específicos de críquete
	Winner    string
	Venue     string
	MatchType string

	// Raw guarda o registro original para a extração de placar em camadas
	Raw map[string]any
}

// MarketSpec define a estratégia estrutural de parsing das outcomes de um mercado
type MarketSpec string

const (
	Spec3Way     MarketSpec = "3way"
	Spec2Way     MarketSpec = "2way"
	SpecTotals   MarketSpec = "totals"
	SpecHandicap MarketSpec = "handicap"
	SpecGrid     MarketSpec = "grid"
	SpecYesNo    MarketSpec = "yes_no"
	SpecUnknown  MarketSpec = "unknown"
)

type Market struct {
	Name     string // chave canônica, ex: "match_result"
	RawName  string
	Spec     MarketSpec
	Outcomes []Outcome
}

type Outcome struct {
	Key   string   // chave normalizada, ex: "home", "over", "2-1"
	Label string   // texto original
	Price *float64 // odd decimal, nil se não parseável
	Line  *float64 // linha de totals/handicap
}
