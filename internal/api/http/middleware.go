package http

import (
	"context"
	"net/http"
	"strings"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/logger"
	"atv-rental-backend/internal/security"
)

type actorKey struct{}

// actorFrom returns the authenticated caller placed in ctx by the auth
// middleware.
func actorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// authMiddleware validates the Bearer access token and attaches the
// caller as a domain.Actor to the request context.
func authMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing authorization header"})
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid authorization header"})
				return
			}

			claims, err := tokens.ValidateTokenOfType(parts[1], security.TokenTypeAccess)
			if err != nil {
				writeError(w, err)
				return
			}

			actor := domain.Actor{UserID: claims.UserID, Role: claims.Role}
			ctx := context.WithValue(r.Context(), actorKey{}, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireStaff rejects callers whose role cannot manage the fleet or
// drive rental transitions.
func requireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok || !actor.IsStaff() {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: domain.ErrForbidden.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin rejects everyone but administrators.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok || actor.Role != domain.RoleAdmin {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: domain.ErrForbidden.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
