package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/Dividend-Income-Projector/internal/apperrors"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
	"github.com/ndewijer/Dividend-Income-Projector/internal/projection"
)

// maxTickerLength bounds ticker symbols accepted from requests and configuration.
const maxTickerLength = 16

// ValidateTicker checks that a ticker is non-empty, short and alphanumeric.
func ValidateTicker(ticker string) error {
	t := strings.TrimSpace(ticker)
	if t == "" {
		return fmt.Errorf("%w: ticker is required", apperrors.ErrInvalidTicker)
	}
	if len(t) > maxTickerLength {
		return fmt.Errorf("%w: %q is longer than %d characters", apperrors.ErrInvalidTicker, t, maxTickerLength)
	}
	for _, r := range t {
		if !isAlnum(r) {
			return fmt.Errorf("%w: %q contains %q", apperrors.ErrInvalidTicker, t, r)
		}
	}
	return nil
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// ValidateHoldings checks the static portfolio: every ticker valid, unique
// (case-insensitive) and held with a non-negative quantity.
//
// Returns a validation Error keyed by holding index if validation fails.
func ValidateHoldings(holdings []model.Holding) error {
	errors := make(map[string]string)
	seen := make(map[string]int, len(holdings))

	for i, h := range holdings {
		field := fmt.Sprintf("holdings[%d]", i)

		if err := ValidateTicker(h.Ticker); err != nil {
			errors[field+".ticker"] = err.Error()
		} else if first, ok := seen[h.Key()]; ok {
			errors[field+".ticker"] = fmt.Sprintf("duplicate of holdings[%d]", first)
		} else {
			seen[h.Key()] = i
		}

		if h.Quantity.IsNegative() {
			errors[field+".quantity"] = "quantity must not be negative"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateOverrides checks manual settlement overrides.
//
// Required fields:
//   - ticker: valid ticker
//   - paymentDate: YYYY-MM-DD
//
// Optional fields (validated if provided):
//   - status: received or pending
//   - actualPaymentDate: YYYY-MM-DD
func ValidateOverrides(overrides []model.SettlementOverride) error {
	errors := make(map[string]string)

	for i, o := range overrides {
		field := fmt.Sprintf("overrides[%d]", i)

		if err := ValidateTicker(o.Ticker); err != nil {
			errors[field+".ticker"] = err.Error()
		}
		if _, err := time.Parse(projection.DateLayout, o.PaymentDate); err != nil {
			errors[field+".paymentDate"] = err.Error()
		}

		switch o.Status {
		case "", model.StatusReceived, model.StatusPending:
		default:
			errors[field+".status"] = fmt.Sprintf("unknown status %q", o.Status)
		}

		if o.ActualPaymentDate != "" {
			if _, err := time.Parse(projection.DateLayout, o.ActualPaymentDate); err != nil {
				errors[field+".actualPaymentDate"] = err.Error()
			}
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateFeeRule checks the withholding rule from configuration.
func ValidateFeeRule(rule projection.FeeRule) error {
	if err := rule.Validate(); err != nil {
		return &Error{Fields: map[string]string{"fee": err.Error()}}
	}
	return nil
}

// ParseReferenceDate parses a YYYY-MM-DD reference date as midnight UTC.
// An empty string returns the zero time and no error.
func ParseReferenceDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(projection.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidDate, s)
	}
	return t.UTC(), nil
}

// ParseBoolParam parses an optional boolean query parameter.
func ParseBoolParam(s string, defaultValue bool) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid boolean %q", s)
	}
	return b, nil
}
