package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TickerAmount is one ticker's share of a monthly bucket.
type TickerAmount struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// MonthBucket sums net income paid in one calendar month of the reference year.
type MonthBucket struct {
	Month     string         `json:"name"`
	Amount    int64          `json:"amount"`
	Breakdown []TickerAmount `json:"breakdown"`
}

// HoldingIncome is the annual net income attributed to one holding.
type HoldingIncome struct {
	Ticker    string          `json:"ticker"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	AnnualNet int64           `json:"annualNet"`
}

// Summary holds the aggregates the dashboard renders. Every figure is computed
// from the same (possibly projection-filtered) event list.
type Summary struct {
	ReferenceDate   time.Time       `json:"referenceDate"`
	ShowProjections bool            `json:"showProjections"`
	TotalNet        int64           `json:"totalNet"`
	ReceivedNet     int64           `json:"receivedNet"`
	PendingNet      int64           `json:"pendingNet"`
	Monthly         []MonthBucket   `json:"monthly"`
	NextPayment     *DividendEvent  `json:"nextPayment,omitempty"`
	PerHolding      []HoldingIncome `json:"perHolding"`
}

// Dashboard is the projection response: the ordered events plus their summary.
type Dashboard struct {
	Events   []DividendEvent       `json:"events"`
	Summary  Summary               `json:"summary"`
	Rejected []RejectedDeclaration `json:"rejected,omitempty"`
}
