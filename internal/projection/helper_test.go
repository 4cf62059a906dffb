package projection_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Dividend-Income-Projector/internal/logging"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
	"github.com/ndewijer/Dividend-Income-Projector/internal/projection"
)

// referenceDay is the fixed "today" used across the projection tests.
var referenceDay = time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)

func newEngine() *projection.Engine {
	return projection.NewEngine(projection.DefaultFeeRule(), logging.Discard())
}

func holding(ticker, quantity string) model.Holding {
	return model.Holding{
		Ticker:   ticker,
		Name:     "Name " + ticker,
		Quantity: decimal.RequireFromString(quantity),
		Currency: "TWD",
		Rate:     decimal.NewFromInt(1),
	}
}

func decl(exDate, paymentDate, cash string) model.DividendDeclaration {
	return model.DividendDeclaration{
		ExDividendDate: exDate,
		PaymentDate:    paymentDate,
		CashDividend:   decimal.RequireFromString(cash),
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func mustProject(t *testing.T, e *projection.Engine, holdings []model.Holding, histories map[string][]model.DividendDeclaration, today time.Time) projection.Result {
	t.Helper()
	result, err := e.Project(holdings, histories, today)
	if err != nil {
		t.Fatalf("Project() returned unexpected error: %v", err)
	}
	return result
}
