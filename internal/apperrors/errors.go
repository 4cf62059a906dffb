package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
var (
	// ErrHoldingNotFound indicates that no holding with the given ticker is configured.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrDividendHistoryNotFound indicates that every upstream path variant failed for a ticker.
	ErrDividendHistoryNotFound = errors.New("dividend history not found")

	// ErrSnapshotNotFound indicates that no last-known-good declarations are stored for a ticker.
	ErrSnapshotNotFound = errors.New("dividend snapshot not found")
)

// Business logic errors represent caller contract violations.
// The projection engine returns these for structurally invalid input.
var (
	// ErrNegativeQuantity indicates a holding with a quantity below zero.
	ErrNegativeQuantity = errors.New("quantity cannot be negative")

	// ErrDuplicateHolding indicates two holdings share a ticker (compared case-insensitively).
	ErrDuplicateHolding = errors.New("duplicate holding ticker")

	// ErrMissingReferenceDate indicates a projection was requested without a reference date.
	ErrMissingReferenceDate = errors.New("reference date is required")

	ErrInvalidTicker = errors.New("ticker is required")
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD")
)

// Declaration errors describe why a single dividend declaration was rejected.
var (
	ErrInvalidPaymentDate   = errors.New("unparseable payment date")
	ErrInvalidExDividend    = errors.New("unparseable ex-dividend date")
	ErrInvalidCashDividend  = errors.New("invalid cash dividend amount")
	ErrMalformedDeclaration = errors.New("malformed dividend declaration")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToProject         = errors.New("failed to project dividend events")
	ErrFailedToExport          = errors.New("failed to export dividend snapshot")
	ErrFailedToRefresh         = errors.New("failed to refresh dividend history")
	ErrFailedToFetchDividends  = errors.New("failed to fetch dividend data")
	ErrFailedToGetVersionInfo  = errors.New("failed to get version information")
	ErrFailedToReadMetadata    = errors.New("failed to read refresh metadata")
	ErrFailedToLoadPortfolio   = errors.New("failed to load portfolio file")
	ErrFailedToStoreDividends  = errors.New("failed to store dividend snapshot")
	ErrFailedToRetrieveHolding = errors.New("failed to retrieve holdings")
)
