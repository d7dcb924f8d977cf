package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

type authKey struct{}

// Auth returns middleware that checks the Authorization header for a Bearer
// token and marks the request as signed in. Requests without the header pass
// through anonymously; a malformed header or wrong token is rejected with 401.
// An empty token disables auth and every request is signed in.
func Auth(token string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, withSignedIn(r))
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				unauthorized(w, "invalid authorization scheme")
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				unauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, withSignedIn(r))
		})
	}
}

// RequireAuth rejects requests that are not signed in.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !SignedIn(r.Context()) {
			unauthorized(w, "sign in required")
			return
		}
		next(w, r)
	}
}

// SignedIn reports whether the request context carries a signed-in caller.
func SignedIn(ctx context.Context) bool {
	v, _ := ctx.Value(authKey{}).(bool)
	return v
}

func withSignedIn(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), authKey{}, true))
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
