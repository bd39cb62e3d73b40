// Package display formats simulator values for human-facing collaborators.
package display

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the display currency used when none is configured.
const DefaultCurrency = money.RUB

// FormatMoney renders amount with the currency's symbol, grouping and fraction digits.
// Unknown currency codes fall back to two fraction digits without a symbol.
func FormatMoney(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = DefaultCurrency
	}
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2)
	}

	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), code).Display()
}

// FormatPrice renders a price with two fraction digits and no symbol.
func FormatPrice(price decimal.Decimal) string {
	return price.StringFixed(2)
}
