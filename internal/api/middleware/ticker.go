package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Dividend-Income-Projector/internal/api/response"
	"github.com/ndewijer/Dividend-Income-Projector/internal/validation"
)

// ValidateTickerMiddleware validates the {ticker} URL parameter.
// Returns 400 Bad Request if the ticker is missing or malformed.
//
// Example usage in router:
//
//	r.With(middleware.ValidateTickerMiddleware).Get("/dividends/{ticker}", handler.Dividends)
func ValidateTickerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ticker := chi.URLParam(r, "ticker")

		if ticker == "" {
			response.RespondError(w, http.StatusBadRequest, "Ticker is required", "")
			return
		}

		if err := validation.ValidateTicker(ticker); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid ticker", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
