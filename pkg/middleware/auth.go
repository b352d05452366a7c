package middleware

import (
	"context"
	"net/http"
	"strings"

	apperrors "custodia/pkg/errors"
	"custodia/pkg/logger"
	"custodia/pkg/model"
)

const PrincipalKey contextKey = "principal"

// TokenVerifier checks a bearer token against the identity collaborator.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*model.Principal, error)
}

// BearerAuth guards mutating requests behind the identity collaborator.
// Read-only requests pass through; the reporting and listing surfaces are
// open to the portal UIs.
func BearerAuth(verifier TokenVerifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			token := extractBearerToken(r)
			if token == "" {
				rejectUnauthorized(w, log, r, "Missing bearer token")
				return
			}

			principal, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.CodeUnauthorized {
					rejectUnauthorized(w, log, r, appErr.Message)
					return
				}
				log.Error("Token verification failed",
					"request_id", requestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error":"Identity service is temporarily unavailable"}`))
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func rejectUnauthorized(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Unauthorized request",
		"request_id", requestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"method", r.Method,
		"reason", reason,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
}

// PrincipalFromContext returns the verified caller, if any.
func PrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(*model.Principal)
	return principal, ok
}
