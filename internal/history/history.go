// Package history retrieves raw dividend declarations per ticker.
//
// Retrieval never fails from the caller's point of view: a FallbackSource
// answers from its memo, then the upstream fetcher, then the last-known-good
// snapshot, and finally with an empty list.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ndewijer/Dividend-Income-Projector/internal/apperrors"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
)

// Source returns the dividend declarations of a ticker. Implementations absorb
// retrieval failures and return an empty list instead.
type Source interface {
	Fetch(ctx context.Context, ticker string) []model.DividendDeclaration
}

// Fetcher retrieves the raw JSON dividend payload of a ticker from upstream.
type Fetcher interface {
	FetchDividends(ctx context.Context, ticker string) ([]byte, error)
}

// Store persists the last successfully fetched declarations per ticker.
type Store interface {
	Replace(ctx context.Context, ticker string, decls []model.DividendDeclaration, fetchedAt time.Time) error
	Get(ctx context.Context, ticker string) ([]model.DividendDeclaration, error)
}

// Decode parses an upstream JSON array of declarations element by element.
// Elements that do not decode (non-numeric amounts, wrong shape) are skipped
// and reported in the returned error slice; the rest are kept in order.
// A body that is not a JSON array, including null, is an error for the whole
// payload and yields nil declarations.
func Decode(data []byte) ([]model.DividendDeclaration, []error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, []error{fmt.Errorf("%w: %w", apperrors.ErrMalformedDeclaration, err)}
	}
	if raw == nil {
		return nil, []error{fmt.Errorf("%w: body is not an array", apperrors.ErrMalformedDeclaration)}
	}

	decls := make([]model.DividendDeclaration, 0, len(raw))
	var errs []error
	for i, elem := range raw {
		var d model.DividendDeclaration
		if err := json.Unmarshal(elem, &d); err != nil {
			errs = append(errs, fmt.Errorf("%w: element %d: %w", apperrors.ErrMalformedDeclaration, i, err))
			continue
		}
		decls = append(decls, d)
	}
	return decls, errs
}
