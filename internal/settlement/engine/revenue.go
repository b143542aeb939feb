package engine

import "github.com/shopspring/decimal"

// SportsbookTotals são as somas das apostas liquidadas de um operador
type SportsbookTotals struct {
	LostStakes decimal.Decimal // stake das apostas perdidas
	WonPayouts decimal.Decimal // actual_return das apostas ganhas
	WonStakes  decimal.Decimal // stake das apostas ganhas
}

// CasinoTotals são as somas das rodadas de cassino de um operador
type CasinoTotals struct {
	Stakes  decimal.Decimal
	Payouts decimal.Decimal
}

// OperatorRevenue recalcula o total_revenue a partir das somas:
// (stakes perdidas - lucro líquido pago) + (stakes do cassino - pagamentos do cassino)
func OperatorRevenue(sb SportsbookTotals, casino CasinoTotals) decimal.Decimal {
	netPaid := sb.WonPayouts.Sub(sb.WonStakes)
	return sb.LostStakes.Sub(netPaid).Add(casino.Stakes.Sub(casino.Payouts)).Round(2)
}
