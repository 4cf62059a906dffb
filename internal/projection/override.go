package projection

import (
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
)

// ApplyOverrides marks events as settled by hand. An override matches an event
// with the same ticker (case-insensitive) paid on the same calendar day; the
// event then takes the override's status, actual payment date and account.
// Overrides with an unparseable payment date match nothing.
//
// The returned slice is a copy; order is preserved.
func ApplyOverrides(events []model.DividendEvent, overrides []model.SettlementOverride) []model.DividendEvent {
	out := make([]model.DividendEvent, len(events))
	copy(out, events)
	if len(overrides) == 0 {
		return out
	}

	byKey := make(map[string]model.SettlementOverride, len(overrides))
	for _, o := range overrides {
		day, err := ParseDate(o.PaymentDate)
		if err != nil {
			continue
		}
		byKey[overrideKey(o.Ticker, day.Format(DateLayout))] = o
	}

	for i, e := range out {
		o, ok := byKey[overrideKey(e.Ticker, e.PaymentDate.UTC().Format(DateLayout))]
		if !ok {
			continue
		}
		status := o.Status
		if status == "" {
			status = model.StatusReceived
		}
		out[i].Status = status
		out[i].ActualPaymentDate = o.ActualPaymentDate
		out[i].Account = o.Account
	}

	return out
}

func overrideKey(ticker, day string) string {
	return model.TickerKey(ticker) + "|" + day
}
