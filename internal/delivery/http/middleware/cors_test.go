package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	origins := []string{"https://app.example.com", " https://staging.example.com/ "}

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		nextReached bool
	}{
		{
			name:        "allowed origin on normal request",
			method:      http.MethodGet,
			origin:      "https://app.example.com",
			wantStatus:  http.StatusTeapot,
			wantOrigin:  "https://app.example.com",
			nextReached: true,
		},
		{
			name:       "allowed origin preflight short-circuits",
			method:     http.MethodOptions,
			origin:     "https://app.example.com",
			wantStatus: http.StatusNoContent,
			wantOrigin: "https://app.example.com",
		},
		{
			name:       "trailing slash and whitespace are normalized",
			method:     http.MethodOptions,
			origin:     "https://staging.example.com",
			wantStatus: http.StatusNoContent,
			wantOrigin: "https://staging.example.com",
		},
		{
			name:        "unknown origin gets no CORS headers",
			method:      http.MethodGet,
			origin:      "https://evil.example.com",
			wantStatus:  http.StatusTeapot,
			nextReached: true,
		},
		{
			name:       "unknown origin preflight still returns 204",
			method:     http.MethodOptions,
			origin:     "https://evil.example.com",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextReached := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextReached = true
				w.WriteHeader(http.StatusTeapot)
			})
			handler := CORS(origins, next)

			req := httptest.NewRequest(tt.method, "http://test/events", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.nextReached, nextReached, "next handler reached")
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, rr.Header().Values("Vary"), "Origin")
			if tt.wantOrigin != "" && tt.method == http.MethodOptions {
				assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Methods"))
				assert.NotEmpty(t, rr.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}
