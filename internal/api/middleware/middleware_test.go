package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Dividend-Income-Projector/internal/api/middleware"
	"github.com/ndewijer/Dividend-Income-Projector/internal/logging"
)

func TestValidateTickerMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		ticker     string
		wantCalled bool
		wantCode   int
	}{
		{"passes through valid ticker", "00696B", true, http.StatusOK},
		{"returns 400 for missing ticker", "", false, http.StatusBadRequest},
		{"returns 400 for invalid ticker", "0050;DROP", false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			mw := middleware.ValidateTickerMiddleware(next)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("ticker", tt.ticker)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			mw.ServeHTTP(w, req)

			if handlerCalled != tt.wantCalled {
				t.Errorf("Expected handler called = %v", tt.wantCalled)
			}
			if w.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "info")

	var fromCtx bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = logging.FromContext(r.Context()) != logging.L
		w.WriteHeader(http.StatusTeapot)
	})

	handler := chimiddleware.RequestID(middleware.Logger(logger)(next))

	req := httptest.NewRequest(http.MethodGet, "/api/projection", nil)
	req.URL.Path = "/api/projection\r\ninjected"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !fromCtx {
		t.Error("Expected request logger in context")
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("Expected status 418, got %v", entry["status"])
	}
	if path, _ := entry["path"].(string); strings.ContainsAny(path, "\r\n") {
		t.Errorf("Expected CR/LF stripped from path, got %q", path)
	}
	if entry["request_id"] == nil {
		t.Error("Expected request_id in log entry")
	}
}
