package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DividendDeclaration is one historical or announced dividend record for a ticker,
// as produced by the history source. Dates are kept as received so the projection
// engine can reject the ones it cannot parse.
type DividendDeclaration struct {
	ExDividendDate string          `json:"date"`                    // Date the right to the dividend is determined
	PaymentDate    string          `json:"paymentDate"`             // Date cash is disbursed
	CashDividend   decimal.Decimal `json:"cashDividend"`            // Cash amount per underlying share
	StockDividend  decimal.Decimal `json:"stockDividend,omitzero"`  // Ignored, cash-only system
	FiscalPeriod   string          `json:"fiscalPeriod,omitempty"` // Passthrough label
}

// DividendStatus tells whether an event's payment date has passed.
type DividendStatus string

const (
	StatusReceived DividendStatus = "received"
	StatusPending  DividendStatus = "pending"
)

// DividendEvent is one derived payment event for the reference year.
// Amounts are whole currency units.
type DividendEvent struct {
	Ticker            string         `json:"ticker"`
	GrossAmount       int64          `json:"amount"`
	NetAmount         int64          `json:"netAmount"`
	Fee               int64          `json:"fee"`
	ExDividendDate    string         `json:"exDividendDate"`
	PaymentDate       time.Time      `json:"paymentDate"`                 // Year adjusted when projected
	Month             string         `json:"month"`                       // Short month label of PaymentDate
	Status            DividendStatus `json:"status"`
	IsProjection      bool           `json:"isProjection"`
	ActualPaymentDate string         `json:"actualPaymentDate,omitempty"` // Set by a settlement override
	Account           string         `json:"account,omitempty"`           // Set by a settlement override
}

// SettlementOverride marks a specific payment as settled by hand.
// It is matched against events by ticker and payment day.
type SettlementOverride struct {
	Ticker            string         `json:"ticker" toml:"ticker"`
	PaymentDate       string         `json:"paymentDate" toml:"payment_date"`
	Status            DividendStatus `json:"status" toml:"status"`
	ActualPaymentDate string         `json:"actualPaymentDate,omitempty" toml:"actual_payment_date"`
	Account           string         `json:"account,omitempty" toml:"account"`
}

// RejectedDeclaration records a declaration the engine refused to project.
type RejectedDeclaration struct {
	Ticker      string              `json:"ticker"`
	Declaration DividendDeclaration `json:"declaration"`
	Reason      string              `json:"reason"`
}
