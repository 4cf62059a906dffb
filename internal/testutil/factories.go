package testutil

import (
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Dividend-Income-Projector/internal/config"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
	"github.com/ndewijer/Dividend-Income-Projector/internal/projection"
)

// NewHolding creates a TWD holding of lots lots. lots is a decimal string.
func NewHolding(ticker, lots string) model.Holding {
	return model.Holding{
		Ticker:   ticker,
		Name:     ticker + " Test",
		Quantity: decimal.RequireFromString(lots),
		Currency: config.DefaultCurrency,
		Rate:     decimal.NewFromInt(1),
	}
}

// Declaration creates a dividend declaration paying cash per share.
func Declaration(exDate, paymentDate, cash string) model.DividendDeclaration {
	return model.DividendDeclaration{
		ExDividendDate: exDate,
		PaymentDate:    paymentDate,
		CashDividend:   decimal.RequireFromString(cash),
	}
}

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	portfolio := testutil.NewPortfolioBuilder().
//	    WithHolding("0050", "24").
//	    WithOverride(model.SettlementOverride{Ticker: "0050", PaymentDate: "2026-02-11"}).
//	    Build()
type PortfolioBuilder struct {
	portfolio config.Portfolio
}

// NewPortfolioBuilder creates a PortfolioBuilder with the default fee rule.
func NewPortfolioBuilder() *PortfolioBuilder {
	return &PortfolioBuilder{
		portfolio: config.Portfolio{
			Source: "test",
			Fee:    projection.DefaultFeeRule(),
		},
	}
}

// WithHolding adds a holding.
func (b *PortfolioBuilder) WithHolding(ticker, lots string) *PortfolioBuilder {
	b.portfolio.Holdings = append(b.portfolio.Holdings, NewHolding(ticker, lots))
	return b
}

// WithOverride adds a settlement override.
func (b *PortfolioBuilder) WithOverride(o model.SettlementOverride) *PortfolioBuilder {
	b.portfolio.Overrides = append(b.portfolio.Overrides, o)
	return b
}

// WithFee replaces the fee rule.
func (b *PortfolioBuilder) WithFee(rule projection.FeeRule) *PortfolioBuilder {
	b.portfolio.Fee = rule
	return b
}

// WithSource sets the source label.
func (b *PortfolioBuilder) WithSource(source string) *PortfolioBuilder {
	b.portfolio.Source = source
	return b
}

// Build returns the portfolio.
func (b *PortfolioBuilder) Build() *config.Portfolio {
	p := b.portfolio
	return &p
}

// NewPortfolio creates a portfolio holding the given positions.
func NewPortfolio(holdings ...model.Holding) *config.Portfolio {
	p := NewPortfolioBuilder().Build()
	p.Holdings = holdings
	return p
}
