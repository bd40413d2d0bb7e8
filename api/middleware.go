package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shaj13/go-guardian/auth"
	"go.uber.org/zap"

	"github.com/pranaou2005/Wheelhub-backend/config"
	"github.com/pranaou2005/Wheelhub-backend/models"
)

const jwtStrategyKey = auth.StrategyKey("wheelhub.jwt")

var errMissingToken = errors.New("missing bearer token")

// jwtStrategy is a go-guardian strategy backed by the TokenService
type jwtStrategy struct {
	tokens *TokenService
}

// Authenticate implements auth.Strategy
func (s jwtStrategy) Authenticate(ctx context.Context, r *http.Request) (auth.Info, error) {
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return nil, errMissingToken
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return auth.NewDefaultUser(claims.UserID, claims.UserID, []string{string(claims.Role)}, nil), nil
}

// bearerToken strips surrounding whitespace and an optional "Bearer " prefix
func bearerToken(header string) string {
	token := strings.TrimSpace(header)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// AuthGate validates bearer tokens and attaches the caller identity to the request
type AuthGate struct {
	authenticator auth.Authenticator
}

// NewAuthGate sets up a go-guardian authenticator with the jwt strategy enabled
func NewAuthGate(tokens *TokenService) *AuthGate {
	authenticator := auth.New()
	authenticator.EnableStrategy(jwtStrategyKey, jwtStrategy{tokens: tokens})
	return &AuthGate{authenticator: authenticator}
}

// Middleware rejects requests without a valid token with a generic 401
func (g *AuthGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, err := g.authenticator.Authenticate(r)
		if err != nil {
			zap.S().Debugw("unauthorized", "url", r.URL.Path, "error", err)
			config.ErrorStatus("Invalid or missing token", http.StatusUnauthorized, w, nil)
			return
		}
		id := Identity{ID: info.ID()}
		if groups := info.Groups(); len(groups) > 0 {
			id.Role = models.Role(groups[0])
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// TokenFromQuery copies a "token" query parameter into the Authorization header when the
// header is absent. Browsers cannot set headers on websocket upgrades.
func TokenFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if token := r.URL.Query().Get("token"); token != "" {
				r.Header.Set("Authorization", "Bearer "+token)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole only lets through identities whose role is one of roles. It must run after
// AuthGate.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := models.NewRoleSet(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				config.ErrorStatus("Invalid or missing token", http.StatusUnauthorized, w, nil)
				return
			}
			if !allowed.Contains(id.Role) {
				config.ErrorStatus("Access denied: insufficient permissions", http.StatusForbidden, w, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
