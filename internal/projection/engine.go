// Package projection derives the expected dividend payments of a portfolio for a
// reference year from raw per-ticker dividend declarations.
//
// The engine is a pure function of its inputs: it never reads the clock, performs
// no I/O and holds no mutable state between calls, so identical inputs always
// produce identical output.
package projection

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/ndewijer/Dividend-Income-Projector/internal/apperrors"
	"github.com/ndewijer/Dividend-Income-Projector/internal/logging"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
)

// Engine projects dividend events using a fixed withholding rule.
type Engine struct {
	fee    FeeRule
	logger *slog.Logger
}

// NewEngine creates an Engine. A nil logger falls back to the global logger.
func NewEngine(fee FeeRule, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.L
	}
	return &Engine{
		fee:    fee,
		logger: logger,
	}
}

// FeeRule returns the withholding rule the engine applies.
func (e *Engine) FeeRule() FeeRule {
	return e.fee
}

// Result is the output of one projection run.
type Result struct {
	// Events is ordered by payment date, then ticker.
	Events []model.DividendEvent
	// Rejected lists declarations excluded because they could not be parsed.
	Rejected []model.RejectedDeclaration
}

// declaration is a DividendDeclaration whose dates have been parsed.
type declaration struct {
	source  model.DividendDeclaration
	exDate  time.Time
	payment time.Time
}

// Project derives the dividend events of the reference year, today's calendar
// year in UTC, for every holding with a positive quantity.
//
// For each holding the declarations paid in the reference year are emitted as-is.
// Declarations paid in the previous year are rolled forward to the same month and
// day of the reference year, unless a reference-year declaration already pays in
// that calendar month. Events paid strictly before today are received, the rest
// pending.
//
// Tickers without history produce no events. A negative quantity or a ticker held
// twice is a caller error and aborts the run.
func (e *Engine) Project(holdings []model.Holding, histories map[string][]model.DividendDeclaration, today time.Time) (Result, error) {
	if today.IsZero() {
		return Result{}, apperrors.ErrMissingReferenceDate
	}
	if err := checkHoldings(holdings); err != nil {
		return Result{}, err
	}

	today = today.UTC()
	year := today.Year()
	byTicker := indexHistories(histories)

	result := Result{Events: []model.DividendEvent{}}
	for _, h := range holdings {
		if h.Quantity.IsZero() {
			continue
		}

		decls, rejected := e.parseHistory(h.Ticker, byTicker[h.Key()])
		result.Rejected = append(result.Rejected, rejected...)
		result.Events = append(result.Events, e.projectHolding(h, decls, year, today)...)
	}

	SortEvents(result.Events)
	return result, nil
}

func (e *Engine) projectHolding(h model.Holding, decls []declaration, year int, today time.Time) []model.DividendEvent {
	var thisYear, lastYear []declaration
	for _, d := range decls {
		switch d.payment.Year() {
		case year:
			thisYear = append(thisYear, d)
		case year - 1:
			lastYear = append(lastYear, d)
		}
	}

	events := make([]model.DividendEvent, 0, len(thisYear)+len(lastYear))
	covered := make(map[time.Month]bool, len(thisYear))
	for _, d := range thisYear {
		events = append(events, e.newEvent(h, d.source, d.payment, false, today))
		covered[d.payment.Month()] = true
	}

	// Month-slot heuristic: a payment month already seen this year is treated as
	// the same slot, even if the ticker paid twice in that month last year.
	for _, d := range lastYear {
		if covered[d.payment.Month()] {
			continue
		}
		events = append(events, e.newEvent(h, d.source, rollToYear(d.payment, year), true, today))
	}

	return events
}

func (e *Engine) newEvent(h model.Holding, d model.DividendDeclaration, payment time.Time, isProjection bool, today time.Time) model.DividendEvent {
	amounts := e.fee.Compute(d.CashDividend, h.Quantity)

	status := model.StatusPending
	if payment.Before(today) {
		status = model.StatusReceived
	}

	return model.DividendEvent{
		Ticker:         h.Ticker,
		GrossAmount:    amounts.Gross,
		NetAmount:      amounts.Net,
		Fee:            amounts.Fee,
		ExDividendDate: d.ExDividendDate,
		PaymentDate:    payment,
		Month:          MonthLabel(payment),
		Status:         status,
		IsProjection:   isProjection,
	}
}

// parseHistory validates declarations and collapses restatements. Declarations
// sharing an ex-dividend date and a payment date are the same dividend; the last
// one in history order wins and takes the position of the first.
func (e *Engine) parseHistory(ticker string, history []model.DividendDeclaration) ([]declaration, []model.RejectedDeclaration) {
	var rejected []model.RejectedDeclaration
	parsed := make([]declaration, 0, len(history))
	seen := make(map[string]int, len(history))

	for _, d := range history {
		decl, err := parseDeclaration(d)
		if err != nil {
			e.logger.Warn("rejected dividend declaration",
				"ticker", ticker,
				"exDividendDate", d.ExDividendDate,
				"paymentDate", d.PaymentDate,
				"error", err)
			rejected = append(rejected, model.RejectedDeclaration{
				Ticker:      ticker,
				Declaration: d,
				Reason:      err.Error(),
			})
			continue
		}

		key := decl.exDate.Format(time.RFC3339Nano) + "|" + decl.payment.Format(time.RFC3339Nano)
		if i, ok := seen[key]; ok {
			parsed[i] = decl
			continue
		}
		seen[key] = len(parsed)
		parsed = append(parsed, decl)
	}

	return parsed, rejected
}

func parseDeclaration(d model.DividendDeclaration) (declaration, error) {
	payment, err := ParseDate(d.PaymentDate)
	if err != nil {
		return declaration{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidPaymentDate, err)
	}
	exDate, err := ParseDate(d.ExDividendDate)
	if err != nil {
		return declaration{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidExDividend, err)
	}
	if d.CashDividend.IsNegative() {
		return declaration{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidCashDividend, d.CashDividend)
	}
	return declaration{source: d, exDate: exDate, payment: payment}, nil
}

func checkHoldings(holdings []model.Holding) error {
	seen := make(map[string]bool, len(holdings))
	for _, h := range holdings {
		if h.Quantity.IsNegative() {
			return fmt.Errorf("%w: %s has quantity %s", apperrors.ErrNegativeQuantity, h.Ticker, h.Quantity)
		}
		key := h.Key()
		if seen[key] {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateHolding, h.Ticker)
		}
		seen[key] = true
	}
	return nil
}

// indexHistories re-keys histories by normalized ticker. Keys differing only in
// case are merged in sorted key order so the result does not depend on map
// iteration order.
func indexHistories(histories map[string][]model.DividendDeclaration) map[string][]model.DividendDeclaration {
	keys := make([]string, 0, len(histories))
	for k := range histories {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	byTicker := make(map[string][]model.DividendDeclaration, len(histories))
	for _, k := range keys {
		key := model.TickerKey(k)
		byTicker[key] = append(byTicker[key], histories[k]...)
	}
	return byTicker
}

// SortEvents orders events by payment date, then ticker. The sort is stable so
// events equal on both keys keep their relative order.
func SortEvents(events []model.DividendEvent) {
	slices.SortStableFunc(events, func(a, b model.DividendEvent) int {
		if c := a.PaymentDate.Compare(b.PaymentDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Ticker, b.Ticker)
	})
}
