package domain

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds buy costs more than the cash balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientHoldings sell exceeds the shares held.
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	// ErrInvalidQuantity lot count is not a positive integer.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Stable error kinds reported to collaborators.
const (
	KindInsufficientFunds    = "insufficient_funds"
	KindInsufficientHoldings = "insufficient_holdings"
	KindInvalidQuantity      = "invalid_quantity"
)

// ErrorKind maps an order rejection to its kind, or "" for other errors.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrInsufficientHoldings):
		return KindInsufficientHoldings
	case errors.Is(err, ErrInvalidQuantity):
		return KindInvalidQuantity
	default:
		return ""
	}
}

// OrderRejection is a refused order together with the state it was checked against.
type OrderRejection struct {
	Err    error
	Side   Side
	Lots   int
	Price  decimal.Decimal
	Cash   decimal.Decimal
	Shares int
}

func (r *OrderRejection) Error() string {
	switch r.Err {
	case ErrInsufficientFunds:
		return fmt.Sprintf("%s: %s %d lots at %s costs %s, have %s",
			r.Err, r.Side, r.Lots, r.Price.String(), r.Cost().String(), r.Cash.String())
	case ErrInsufficientHoldings:
		return fmt.Sprintf("%s: %s %d lots, have %d", r.Err, r.Side, r.Lots, r.Shares)
	default:
		return fmt.Sprintf("%s: %s %d lots", r.Err, r.Side, r.Lots)
	}
}

func (r *OrderRejection) Unwrap() error {
	return r.Err
}

// Cost returns lots * price.
func (r *OrderRejection) Cost() decimal.Decimal {
	return r.Price.Mul(decimal.NewFromInt(int64(r.Lots)))
}

// Shortfall returns the cash missing for the order, zero when none is.
func (r *OrderRejection) Shortfall() decimal.Decimal {
	return decimal.Max(decimal.Zero, r.Cost().Sub(r.Cash))
}
