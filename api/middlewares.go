package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// requireAuthenticatedUser verifies the bearer token and resolves its user
// before the handler runs. Nothing downstream executes on failure.
func (app *application) requireAuthenticatedUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, errInvalidAuthHeader, http.StatusUnauthorized)
			return
		}
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, errInvalidAuthHeader, http.StatusUnauthorized)
			return
		}
		userID, err := app.tokens.verify(parts[1])
		if err != nil {
			switch {
			case errors.Is(err, errExpiredToken):
				writeError(w, errExpiredToken, http.StatusUnauthorized)
			default:
				writeError(w, errInvalidToken, http.StatusUnauthorized)
			}
			return
		}
		u, err := app.storage.getUserByID(userID)
		if err != nil {
			writeServerError(w, err)
			return
		}
		if u == nil {
			writeError(w, errUserGone, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// requireRole gates a route on an exact role match. It must wrap a handler
// already inside requireAuthenticatedUser; admin is not a superset of user.
func requireRole(role string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			u := getUserFromRequest(r)
			if u == nil || u.Role != role {
				writeError(w, errForbidden, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

func (app *application) enableCORS(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, o := range app.config.cors.trustedOrigins {
				if origin == o || o == "*" {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					// preflight request
					if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
						w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, PUT, PATCH, DELETE")
						w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
						w.WriteHeader(http.StatusOK)
						return
					}
					break
				}
			}
		}
		next.ServeHTTP(w, r)
	}
}

type userContext string

const userContextKey userContext = "userContextKey"

func getUserFromRequest(r *http.Request) *user {
	u, _ := r.Context().Value(userContextKey).(*user)
	return u
}
