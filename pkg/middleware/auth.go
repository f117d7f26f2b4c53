package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dkocak/librarian/pkg/httputil"
)

type contextKeyType string

const identityKey contextKeyType = "identity"

// Claims is the per-request identity attached to the context after a token
// has been verified. It is populated by Authenticate and consumed by
// RequireRole and downstream handlers.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// TokenValidator verifies a raw bearer token and returns its claims. The
// access and refresh middleware differ only in the validator they are
// constructed with, so each validator carries its own signing secret.
type TokenValidator func(token string) (*Claims, error)

// Authenticate returns middleware that gates requests behind a bearer token.
//
// A missing Authorization header yields 401 and the next handler is never
// invoked. A header that is present but malformed, carries a bad signature,
// or has expired yields 403; expiry is not distinguished from other
// verification failures in the response. On success the decoded claims
// are attached to the request context.
func Authenticate(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				writeAuthStatus(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeAuthStatus(w, http.StatusForbidden, "INVALID_TOKEN", "invalid authorization header format")
				return
			}

			claims, err := validate(parts[1])
			if err != nil {
				writeAuthStatus(w, http.StatusForbidden, "INVALID_TOKEN", "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), claims)))
		})
	}
}

// RequireRole returns middleware that restricts a route to the given roles.
// It must be mounted after Authenticate: if no identity is present in the
// context the request is rejected with 401 rather than letting a misordered
// chain fall through. Role comparison is case-insensitive and ignores
// surrounding whitespace on the stored role.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[strings.ToLower(role)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeAuthStatus(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			role := strings.ToLower(strings.TrimSpace(claims.Role))
			if _, ok := allowed[role]; !ok {
				writeAuthStatus(w, http.StatusForbidden, "FORBIDDEN",
					fmt.Sprintf("role %q is not permitted, allowed roles: %s", claims.Role, strings.Join(roles, ", ")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewContext returns a new context carrying the given identity claims.
func NewContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, identityKey, claims)
}

// ClaimsFromContext extracts the identity claims attached by Authenticate.
// The second return value reports whether an identity is present.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(identityKey).(*Claims)
	return claims, ok
}

// UserIDFromContext extracts the authenticated user ID from the request
// context, or "" if no identity is present.
func UserIDFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.UserID
	}
	return ""
}

// RoleFromContext extracts the authenticated user role from the request
// context, or "" if no identity is present.
func RoleFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.Role
	}
	return ""
}

func writeAuthStatus(w http.ResponseWriter, status int, code, message string) {
	httputil.WriteJSON(w, status, httputil.Response{
		Error: &httputil.ErrorResponse{Code: code, Message: message},
	})
}
