package projection

import (
	"cmp"
	"slices"
	"time"

	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
)

// FilterProjections returns the events to show. With show false every projected
// event is dropped. The input slice is never modified.
func FilterProjections(events []model.DividendEvent, show bool) []model.DividendEvent {
	filtered := make([]model.DividendEvent, 0, len(events))
	for _, e := range events {
		if !show && e.IsProjection {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// Summarize computes the dashboard aggregates. The projection toggle is applied
// first, so every figure comes from the same filtered list.
func Summarize(holdings []model.Holding, events []model.DividendEvent, today time.Time, show bool) model.Summary {
	today = today.UTC()
	filtered := FilterProjections(events, show)
	names := holdingNames(holdings)

	summary := model.Summary{
		ReferenceDate:   today,
		ShowProjections: show,
		Monthly:         MonthlyBuckets(filtered, names),
		NextPayment:     NextPayment(filtered, today),
		PerHolding:      perHolding(holdings, filtered),
	}

	for _, e := range filtered {
		summary.TotalNet += e.NetAmount
		if e.Status == model.StatusReceived {
			summary.ReceivedNet += e.NetAmount
		} else {
			summary.PendingNet += e.NetAmount
		}
	}

	return summary
}

// MonthlyBuckets groups net income by month label, January through December.
// Each bucket keeps a per-ticker breakdown sorted by amount, largest first.
func MonthlyBuckets(events []model.DividendEvent, names map[string]string) []model.MonthBucket {
	labels := MonthLabels()
	buckets := make([]model.MonthBucket, len(labels))
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		buckets[i] = model.MonthBucket{Month: label, Breakdown: []model.TickerAmount{}}
		index[label] = i
	}

	for _, e := range events {
		i, ok := index[e.Month]
		if !ok {
			continue
		}
		b := &buckets[i]
		b.Amount += e.NetAmount

		j := slices.IndexFunc(b.Breakdown, func(t model.TickerAmount) bool { return t.Ticker == e.Ticker })
		if j < 0 {
			b.Breakdown = append(b.Breakdown, model.TickerAmount{
				Ticker: e.Ticker,
				Name:   names[model.TickerKey(e.Ticker)],
			})
			j = len(b.Breakdown) - 1
		}
		b.Breakdown[j].Amount += e.NetAmount
	}

	for i := range buckets {
		slices.SortStableFunc(buckets[i].Breakdown, func(a, b model.TickerAmount) int {
			if c := cmp.Compare(b.Amount, a.Amount); c != 0 {
				return c
			}
			return cmp.Compare(a.Ticker, b.Ticker)
		})
	}

	return buckets
}

// NextPayment returns the soonest pending event paid on or after today, or nil.
func NextPayment(events []model.DividendEvent, today time.Time) *model.DividendEvent {
	sorted := slices.Clone(events)
	SortEvents(sorted)

	for _, e := range sorted {
		if e.Status == model.StatusPending && !e.PaymentDate.Before(today) {
			next := e
			return &next
		}
	}
	return nil
}

func perHolding(holdings []model.Holding, events []model.DividendEvent) []model.HoldingIncome {
	totals := make(map[string]int64, len(holdings))
	for _, e := range events {
		totals[model.TickerKey(e.Ticker)] += e.NetAmount
	}

	incomes := make([]model.HoldingIncome, 0, len(holdings))
	for _, h := range holdings {
		if !h.Quantity.IsPositive() {
			continue
		}
		incomes = append(incomes, model.HoldingIncome{
			Ticker:    h.Ticker,
			Name:      h.Name,
			Quantity:  h.Quantity,
			AnnualNet: totals[h.Key()],
		})
	}
	return incomes
}

func holdingNames(holdings []model.Holding) map[string]string {
	names := make(map[string]string, len(holdings))
	for _, h := range holdings {
		names[h.Key()] = h.Name
	}
	return names
}
