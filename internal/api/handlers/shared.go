package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ndewijer/Dividend-Income-Projector/internal/validation"
)

// projectionQuery holds the parsed query of the projection endpoints.
type projectionQuery struct {
	AsOf            time.Time // zero means the server default
	ShowProjections bool
}

// parseProjectionQuery reads ?asOf=YYYY-MM-DD&projections=true|false.
// Projections are shown unless explicitly disabled.
func parseProjectionQuery(r *http.Request) (projectionQuery, error) {
	q := r.URL.Query()

	asOf, err := validation.ParseReferenceDate(q.Get("asOf"))
	if err != nil {
		return projectionQuery{}, fmt.Errorf("asOf: %w", err)
	}

	show, err := validation.ParseBoolParam(q.Get("projections"), true)
	if err != nil {
		return projectionQuery{}, fmt.Errorf("projections: %w", err)
	}

	return projectionQuery{AsOf: asOf, ShowProjections: show}, nil
}
