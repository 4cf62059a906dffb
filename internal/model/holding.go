package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SharesPerLot is the number of underlying shares in one trading lot.
const SharesPerLot = 1000

// Holding represents one portfolio position from the static portfolio file.
// Quantity is expressed in lots and may be fractional.
type Holding struct {
	Ticker   string          `json:"ticker"`   // Exchange symbol, case-insensitive identity
	Name     string          `json:"name"`     // Display label
	Quantity decimal.Decimal `json:"quantity"` // Number of lots held
	Currency string          `json:"currency"` // Carried, not used by the projection
	Rate     decimal.Decimal `json:"rate"`     // Carried, not used by the projection
}

// Key returns the normalized identity of the holding's ticker.
func (h Holding) Key() string {
	return TickerKey(h.Ticker)
}

// Shares returns the number of underlying shares held.
func (h Holding) Shares() decimal.Decimal {
	return h.Quantity.Mul(decimal.NewFromInt(SharesPerLot))
}

// TickerKey normalizes a ticker for case-insensitive comparison and map lookups.
func TickerKey(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
