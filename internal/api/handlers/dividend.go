package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Dividend-Income-Projector/internal/api/response"
	"github.com/ndewijer/Dividend-Income-Projector/internal/apperrors"
	"github.com/ndewijer/Dividend-Income-Projector/internal/logging"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
	"github.com/ndewijer/Dividend-Income-Projector/internal/projection"
	"github.com/ndewijer/Dividend-Income-Projector/internal/service"
)

// DividendHandler handles HTTP requests for holdings, dividend history and projections.
// It parses requests and delegates business logic to the DividendService.
type DividendHandler struct {
	dividendService *service.DividendService
}

// NewDividendHandler creates a new DividendHandler with the provided service dependency.
func NewDividendHandler(dividendService *service.DividendService) *DividendHandler {
	return &DividendHandler{
		dividendService: dividendService,
	}
}

// Holdings returns the configured portfolio.
//
// Endpoint: GET /api/holdings
// Response: 200 OK with array of Holding
func (h *DividendHandler) Holdings(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.dividendService.Holdings())
}

// Dividends proxies the raw upstream dividend history of one ticker. The
// ticker comes from the {ticker} path parameter or the ticker query parameter.
//
// Endpoint: GET /api/dividends?ticker={ticker}, GET /api/dividends/{ticker}
// Response: 200 OK with the upstream JSON array
// Error: 400 Bad Request if the ticker is missing or invalid
// Error: 404 Not Found if no upstream variant answered
func (h *DividendHandler) Dividends(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		ticker = r.URL.Query().Get("ticker")
	}
	if ticker == "" {
		response.RespondError(w, http.StatusBadRequest, "Ticker is required", nil)
		return
	}

	data, err := h.dividendService.FetchRaw(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidTicker) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidTicker.Error(), err.Error())
			return
		}
		logging.FromContext(r.Context()).Warn("dividend proxy failed", "ticker", model.TickerKey(ticker), "error", err)
		response.RespondError(w, http.StatusNotFound, fmt.Sprintf("Failed to fetch dividend data for %s", model.TickerKey(ticker)), nil)
		return
	}

	response.RespondRawJSON(w, http.StatusOK, data)
}

// Projection returns the dividend timeline and summary for the reference year.
//
// Endpoint: GET /api/projection?asOf=YYYY-MM-DD&projections=true|false
// Response: 200 OK with Dashboard
// Error: 400 Bad Request if a query parameter is invalid
// Error: 500 Internal Server Error if the projection fails
func (h *DividendHandler) Projection(w http.ResponseWriter, r *http.Request) {
	q, err := parseProjectionQuery(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	dashboard, err := h.dividendService.Project(r.Context(), q.AsOf, q.ShowProjections)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToProject.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, dashboard)
}

// Export returns a snapshot of the projection as a JSON file download.
//
// Endpoint: GET /api/projection/export?asOf=YYYY-MM-DD&projections=true|false
// Response: 200 OK with Snapshot, Content-Disposition: attachment
// Error: 400 Bad Request if a query parameter is invalid
// Error: 500 Internal Server Error if the export fails
func (h *DividendHandler) Export(w http.ResponseWriter, r *http.Request) {
	q, err := parseProjectionQuery(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	snapshot, err := h.dividendService.Export(r.Context(), q.AsOf, q.ShowProjections)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToExport.Error(), err.Error())
		return
	}

	filename := fmt.Sprintf("dividend-snapshot-%s.json", snapshot.ReferenceDate.Format(projection.DateLayout))
	response.RespondAttachment(w, filename, snapshot)
}

// Refresh re-fetches the dividend history of every holding.
//
// Endpoint: POST /api/refresh
// Response: 200 OK with RefreshResult, including per-ticker failures
// Error: 500 Internal Server Error if the refresh could not run
func (h *DividendHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.dividendService.Refresh(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRefresh.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
