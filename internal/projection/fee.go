package projection

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
)

// Default withholding parameters: payouts of 20000 or more lose 2.11%.
const (
	DefaultFeeThreshold = 20000
	DefaultFeeRate      = "0.0211"
)

var sharesPerLot = decimal.NewFromInt(model.SharesPerLot)

// FeeRule is a single threshold/flat-rate withholding rule.
// A gross amount at or above Threshold is charged floor(gross × Rate).
type FeeRule struct {
	Threshold int64
	Rate      decimal.Decimal
}

// DefaultFeeRule returns the rule currently in force.
func DefaultFeeRule() FeeRule {
	return FeeRule{
		Threshold: DefaultFeeThreshold,
		Rate:      decimal.RequireFromString(DefaultFeeRate),
	}
}

// Validate checks the rule is usable: a non-negative threshold and a rate in [0, 1).
func (r FeeRule) Validate() error {
	if r.Threshold < 0 {
		return fmt.Errorf("fee threshold cannot be negative: %d", r.Threshold)
	}
	if r.Rate.IsNegative() || r.Rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("fee rate must be in [0, 1): %s", r.Rate)
	}
	return nil
}

// Amounts are the whole-unit monetary fields of one event.
type Amounts struct {
	Gross int64
	Fee   int64
	Net   int64
}

// Gross returns floor(cash × quantity × 1000): the per-share amount times the
// number of underlying shares, with fractional currency units dropped.
func Gross(cashPerShare, lots decimal.Decimal) int64 {
	return cashPerShare.Mul(lots).Mul(sharesPerLot).Floor().IntPart()
}

// Fee returns the amount withheld from gross.
func (r FeeRule) Fee(gross int64) int64 {
	if gross < r.Threshold {
		return 0
	}
	return decimal.NewFromInt(gross).Mul(r.Rate).Floor().IntPart()
}

// Compute derives gross, fee and net for a per-share amount and a lot quantity.
func (r FeeRule) Compute(cashPerShare, lots decimal.Decimal) Amounts {
	gross := Gross(cashPerShare, lots)
	fee := r.Fee(gross)
	return Amounts{Gross: gross, Fee: fee, Net: gross - fee}
}
