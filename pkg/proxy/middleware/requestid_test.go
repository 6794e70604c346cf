package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	wrapped := RequestIDMiddleware(handler)

	t.Run("generates request ID when not provided", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		requestID := w.Header().Get("X-Request-ID")
		if _, err := uuid.Parse(requestID); err != nil {
			t.Errorf("Request ID %q is not a UUID: %v", requestID, err)
		}
		if seen != requestID {
			t.Errorf("context request ID = %q, header = %q", seen, requestID)
		}
	})

	tests := []struct {
		name     string
		provided string
		keep     bool
	}{
		{name: "uses provided request ID", provided: "custom-request-id-12345", keep: true},
		{name: "rejects spaces", provided: "bad id", keep: false},
		{name: "rejects oversized ID", provided: strings.Repeat("a", 200), keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-Request-ID", tt.provided)
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			requestID := w.Header().Get("X-Request-ID")
			if (requestID == tt.provided) != tt.keep {
				t.Errorf("Request ID = %q, provided %q, keep = %v", requestID, tt.provided, tt.keep)
			}
		})
	}

	t.Run("generates unique IDs for different requests", func(t *testing.T) {
		w1 := httptest.NewRecorder()
		wrapped.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/test", nil))

		w2 := httptest.NewRecorder()
		wrapped.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/test", nil))

		id1 := w1.Header().Get("X-Request-ID")
		id2 := w2.Header().Get("X-Request-ID")
		if id1 == id2 {
			t.Errorf("Request IDs should be unique, got %s for both", id1)
		}
	})
}

func TestGetRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if requestID := GetRequestID(req.Context()); requestID != "" {
		t.Errorf("Expected empty string, got %s", requestID)
	}
}
