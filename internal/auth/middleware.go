package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// contextKey is unexported so no other package can read or shadow the
// values this package stores in a request context.
type contextKey string

const userIDKey contextKey = "userID"

// TokenCookie is the cookie set by the GitHub login callback.
const TokenCookie = "token"

var errNoToken = errors.New("auth: no token presented")

// RequireAuth rejects requests without a valid token with 401 and stores
// the authenticated user ID in the request context otherwise.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				message := "valid authentication required"
				if errors.Is(err, ErrTokenExpired) {
					message = "session expired"
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "unauthorized",
					"message": message,
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuth identifies the caller when a valid token is present but lets
// anonymous requests through.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil {
				r = r.WithContext(WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns a copy of ctx carrying userID. Handler tests use it to
// simulate an authenticated request without minting a token.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user's ID, or ("", false) for
// anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads the token from the Authorization header, falling back
// to the login cookie, and validates it.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	token := tokenFromHeader(r.Header.Get("Authorization"))
	if token == "" {
		if cookie, err := r.Cookie(TokenCookie); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return "", errNoToken
	}
	return tokens.Validate(token)
}

// tokenFromHeader accepts "Token <t>" and "Bearer <t>", case-insensitively.
func tokenFromHeader(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return strings.TrimSpace(token)
	default:
		return ""
	}
}
