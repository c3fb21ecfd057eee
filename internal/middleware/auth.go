package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"portfolio-auth/internal/model"
	"portfolio-auth/pkg/apierror"
)

// tokenVerifier validates a bearer token and recovers the bound user id. The
// auth service implements it; it records one verify_token outcome per call.
type tokenVerifier interface {
	VerifyToken(tokenString string) (int64, error)
}

type contextKey string

const userIDContextKey contextKey = "auth_user_id"

type AuthMiddleware struct {
	verifier tokenVerifier
}

func NewAuthMiddleware(verifier tokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth extracts the bearer token from the Authorization header and
// gates the wrapped handler. An absent credential is reported as access
// denied before verification is attempted; a present but unverifiable one as
// an invalid token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		userID, err := m.verifier.VerifyToken(token)
		if err != nil {
			writeUnauthorized(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the user id attached by RequireAuth.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	message := "Invalid token"

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		message = apiErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: message})
}
