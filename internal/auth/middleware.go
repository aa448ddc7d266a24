package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/patrimonio-app/patrimonio/internal/platform/httpx"
	"github.com/patrimonio-app/patrimonio/internal/rbac"
)

// PrincipalResolver loads the current role of an authenticated user.
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID int64) (rbac.Principal, error)
}

// Authenticator turns bearer tokens into request principals.
type Authenticator struct {
	tokens   *TokenIssuer
	resolver PrincipalResolver
	logger   *slog.Logger
}

// NewAuthenticator constructs the middleware provider.
func NewAuthenticator(tokens *TokenIssuer, resolver PrincipalResolver, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{tokens: tokens, resolver: resolver, logger: logger}
}

// Middleware requires a valid bearer token on every request.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			httpx.Unauthorized(w, "Authentication credentials were not provided.")
			return
		}
		userID, err := a.tokens.Verify(raw)
		if err != nil {
			a.logger.Debug("token rejected", slog.Any("error", err))
			httpx.Unauthorized(w, "Given token not valid for any token type.")
			return
		}
		principal, err := a.resolver.Resolve(r.Context(), userID)
		if err != nil {
			if errors.Is(err, rbac.ErrNotFound) || errors.Is(err, rbac.ErrInactive) {
				httpx.Unauthorized(w, "User not found or inactive.")
				return
			}
			a.logger.Error("resolve principal", slog.Int64("user_id", userID), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(r.Context(), principal)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
