package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is unexported so only this package can place or read session
// values in a request context.
type contextKey string

const sessionAccountKey contextKey = "sessionAccountID"

// SessionFromHeader extracts a bearer session token if one is present and
// stores the account ID it names in the request context. Requests without
// a token (or with an invalid one) continue as anonymous; individual
// operations decide whether credentials are required.
func SessionFromHeader(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok {
				if id, err := tokens.Validate(strings.TrimSpace(token)); err == nil {
					ctx := context.WithValue(r.Context(), sessionAccountKey, id)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionAccountID returns the account ID carried by a validated bearer
// token, or (0, false) when the request is anonymous or credential-based.
func SessionAccountID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(sessionAccountKey).(int64)
	return id, ok && id > 0
}
