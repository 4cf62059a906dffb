package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Dividend-Income-Projector/internal/apperrors"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
	"github.com/ndewijer/Dividend-Income-Projector/internal/projection"
	"github.com/ndewijer/Dividend-Income-Projector/internal/validation"
)

// DefaultCurrency is assumed for holdings that do not name one.
const DefaultCurrency = "TWD"

// Portfolio is the validated content of the portfolio file.
type Portfolio struct {
	Source    string
	Fee       projection.FeeRule
	Holdings  []model.Holding
	Overrides []model.SettlementOverride
}

// portfolioFile mirrors the TOML layout:
//
//	source = "wantgoo"
//
//	[fee]
//	threshold = 20000
//	rate = 0.0211
//
//	[[holdings]]
//	ticker = "0050"
//	name = "元大台灣50"
//	quantity = 24
//
//	[[overrides]]
//	ticker = "2887"
//	payment_date = "2026-08-20"
//	status = "received"
type portfolioFile struct {
	Source    string                     `toml:"source"`
	Fee       feeSection                 `toml:"fee"`
	Holdings  []holdingEntry             `toml:"holdings"`
	Overrides []model.SettlementOverride `toml:"overrides"`
}

type feeSection struct {
	Threshold *int64   `toml:"threshold"`
	Rate      *float64 `toml:"rate"`
}

// holdingEntry carries numbers as float64 because TOML integers and floats
// both decode into it.
type holdingEntry struct {
	Ticker   string   `toml:"ticker"`
	Name     string   `toml:"name"`
	Quantity float64  `toml:"quantity"`
	Currency string   `toml:"currency"`
	Rate     *float64 `toml:"rate"`
}

// LoadPortfolio reads and validates the portfolio file at path.
func LoadPortfolio(path string) (*Portfolio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToLoadPortfolio, err)
	}
	defer f.Close()

	p, err := ParsePortfolio(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParsePortfolio decodes and validates a TOML portfolio. Omitted fee settings
// fall back to the default withholding rule.
func ParsePortfolio(r io.Reader) (*Portfolio, error) {
	var file portfolioFile
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToLoadPortfolio, err)
	}

	fee := projection.DefaultFeeRule()
	if file.Fee.Threshold != nil {
		fee.Threshold = *file.Fee.Threshold
	}
	if file.Fee.Rate != nil {
		fee.Rate = decimal.NewFromFloat(*file.Fee.Rate)
	}
	if err := validation.ValidateFeeRule(fee); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToLoadPortfolio, err)
	}

	holdings := make([]model.Holding, 0, len(file.Holdings))
	for _, e := range file.Holdings {
		holdings = append(holdings, e.toHolding())
	}
	if err := validation.ValidateHoldings(holdings); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToLoadPortfolio, err)
	}
	if err := validation.ValidateOverrides(file.Overrides); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToLoadPortfolio, err)
	}

	return &Portfolio{
		Source:    file.Source,
		Fee:       fee,
		Holdings:  holdings,
		Overrides: file.Overrides,
	}, nil
}

func (e holdingEntry) toHolding() model.Holding {
	currency := strings.ToUpper(strings.TrimSpace(e.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	rate := decimal.NewFromInt(1)
	if e.Rate != nil {
		rate = decimal.NewFromFloat(*e.Rate)
	}
	return model.Holding{
		Ticker:   strings.TrimSpace(e.Ticker),
		Name:     e.Name,
		Quantity: decimal.NewFromFloat(e.Quantity),
		Currency: currency,
		Rate:     rate,
	}
}
