package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tezpos/tezpos/internal/license"
)

type contextKey string

// LicenseContextKey carries the validated license claims
const LicenseContextKey contextKey = "license"

// LicenseGate blocks mutating requests unless a valid license token bound
// to this machine is presented. Reads pass through so the terminal can
// still show its local state.
func LicenseGate(validator *license.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "license token required", http.StatusPaymentRequired)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := validator.Validate(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired license", http.StatusPaymentRequired)
				return
			}

			ctx := context.WithValue(r.Context(), LicenseContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
