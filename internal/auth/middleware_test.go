package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// echoUser writes the authenticated user ID, or "anonymous".
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		id = "anonymous"
	}
	_, _ = w.Write([]byte(id))
})

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	valid, _ := ts.Generate("user-1")
	expired, _ := ts.GenerateWithDuration("user-1", -time.Minute)
	h := RequireAuth(ts)(echoUser)

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "token scheme",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Token "+valid) },
			wantStatus: http.StatusOK,
			wantBody:   "user-1",
		},
		{
			name:       "bearer scheme",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "bearer "+valid) },
			wantStatus: http.StatusOK,
			wantBody:   "user-1",
		},
		{
			name:       "cookie fallback",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: valid}) },
			wantStatus: http.StatusOK,
			wantBody:   "user-1",
		},
		{
			name:       "missing token",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown scheme",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Basic "+valid) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Token "+expired) },
			wantStatus: http.StatusUnauthorized,
			wantBody:   `"session expired"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	ts := newTestTokenService(t)
	h := OptionalAuth(ts)(echoUser)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token garbage")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "anonymous", rr.Body.String())
}
