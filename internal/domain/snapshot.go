package domain

import "github.com/shopspring/decimal"

// Snapshot display values of a simulation at one instant.
type Snapshot struct {
	Price          decimal.Decimal `json:"price"`
	Cash           decimal.Decimal `json:"cash"`
	Shares         int             `json:"shares"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	Candles        int             `json:"candles"`
	Transactions   int             `json:"transactions"`
}

// PortfolioValue returns cash plus the market value of held shares.
func PortfolioValue(cash decimal.Decimal, shares int, price decimal.Decimal) decimal.Decimal {
	return cash.Add(price.Mul(decimal.NewFromInt(int64(shares))))
}
