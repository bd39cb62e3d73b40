package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction executed order recorded in the ledger.
type Transaction struct {
	// ID unique transaction identifier.
	ID string `json:"id"`
	// Time wall-clock execution time.
	Time time.Time `json:"time"`
	// Side buy or sell.
	Side Side `json:"side"`
	// Lots number of shares.
	Lots int `json:"lots"`
	// UnitPrice price at order time.
	UnitPrice decimal.Decimal `json:"unit_price"`
	// Total lots * unit price.
	Total decimal.Decimal `json:"total"`
}

// NewTransaction creates a Transaction and computes its total.
func NewTransaction(id string, at time.Time, side Side, lots int, unitPrice decimal.Decimal) Transaction {
	return Transaction{
		ID:        id,
		Time:      at,
		Side:      side,
		Lots:      lots,
		UnitPrice: unitPrice,
		Total:     unitPrice.Mul(decimal.NewFromInt(int64(lots))),
	}
}

// String returns a human-readable string representation.
func (t *Transaction) String() string {
	return fmt.Sprintf("%s %d lots @ %s (total %s)", t.Side.String(), t.Lots, t.UnitPrice.StringFixed(2), t.Total.StringFixed(2))
}
