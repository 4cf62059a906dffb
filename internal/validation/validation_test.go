package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Dividend-Income-Projector/internal/apperrors"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
	"github.com/ndewijer/Dividend-Income-Projector/internal/projection"
)

func TestValidateTicker(t *testing.T) {
	tests := []struct {
		name    string
		ticker  string
		wantErr bool
	}{
		{"equity", "2892", false},
		{"bond fund", "00696B", false},
		{"lower case", "00696b", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"path traversal", "../0050", true},
		{"too long", "ABCDEFGHIJKLMNOPQ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTicker(tt.ticker)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTicker(%q) error = %v, wantErr %v", tt.ticker, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperrors.ErrInvalidTicker) {
				t.Errorf("expected ErrInvalidTicker, got %v", err)
			}
		})
	}
}

func TestValidateHoldings(t *testing.T) {
	holding := func(ticker, qty string) model.Holding {
		return model.Holding{Ticker: ticker, Quantity: decimal.RequireFromString(qty)}
	}

	t.Run("valid portfolio", func(t *testing.T) {
		err := ValidateHoldings([]model.Holding{holding("0050", "24"), holding("2330", "0"), holding("6533", "11.5")})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("duplicate ticker ignores case", func(t *testing.T) {
		err := ValidateHoldings([]model.Holding{holding("00696B", "1"), holding("00696b", "2")})

		var verr *Error
		if !errors.As(err, &verr) {
			t.Fatalf("expected *Error, got %v", err)
		}
		if _, ok := verr.Fields["holdings[1].ticker"]; !ok {
			t.Errorf("expected duplicate reported on holdings[1], got %v", verr.Fields)
		}
	})

	t.Run("negative quantity", func(t *testing.T) {
		err := ValidateHoldings([]model.Holding{holding("0050", "-1")})

		var verr *Error
		if !errors.As(err, &verr) {
			t.Fatalf("expected *Error, got %v", err)
		}
		if _, ok := verr.Fields["holdings[0].quantity"]; !ok {
			t.Errorf("expected quantity error, got %v", verr.Fields)
		}
	})
}

func TestValidateOverrides(t *testing.T) {
	valid := model.SettlementOverride{Ticker: "2887", PaymentDate: "2026-08-20", Status: model.StatusReceived, ActualPaymentDate: "2026-08-21"}
	if err := ValidateOverrides([]model.SettlementOverride{valid}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	invalid := []model.SettlementOverride{
		{Ticker: "", PaymentDate: "2026-08-20"},
		{Ticker: "2887", PaymentDate: "20/08/2026"},
		{Ticker: "2887", PaymentDate: "2026-08-20", Status: "paid"},
		{Ticker: "2887", PaymentDate: "2026-08-20", ActualPaymentDate: "soon"},
	}
	err := ValidateOverrides(invalid)

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	for _, field := range []string{
		"overrides[0].ticker",
		"overrides[1].paymentDate",
		"overrides[2].status",
		"overrides[3].actualPaymentDate",
	} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("expected error for %s, got %v", field, verr.Fields)
		}
	}
}

func TestValidateFeeRule(t *testing.T) {
	if err := ValidateFeeRule(projection.DefaultFeeRule()); err != nil {
		t.Errorf("default rule: unexpected error %v", err)
	}
	if err := ValidateFeeRule(projection.FeeRule{Threshold: -1, Rate: decimal.Zero}); err == nil {
		t.Error("expected error for negative threshold")
	}
}

func TestParseReferenceDate(t *testing.T) {
	got, err := ParseReferenceDate("2026-01-20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("got %v", got)
	}

	got, err = ParseReferenceDate("")
	if err != nil || !got.IsZero() {
		t.Errorf("expected zero time for empty input, got %v %v", got, err)
	}

	if _, err := ParseReferenceDate("2026-13-01"); !errors.Is(err, apperrors.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseBoolParam(t *testing.T) {
	tests := []struct {
		in      string
		def     bool
		want    bool
		wantErr bool
	}{
		{"", true, true, false},
		{"", false, false, false},
		{"false", true, false, false},
		{"1", false, true, false},
		{"maybe", true, true, true},
	}

	for _, tt := range tests {
		got, err := ParseBoolParam(tt.in, tt.def)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseBoolParam(%q, %v) = %v, %v", tt.in, tt.def, got, err)
		}
	}
}

func TestError(t *testing.T) {
	err := &Error{Fields: map[string]string{"fee": "rate must be below 1"}}
	if err.Error() != "fee: rate must be below 1" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
