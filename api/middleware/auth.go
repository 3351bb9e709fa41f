package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/marketplace-backend/api/responses"
	pkgAuth "github.com/angelmondragon/marketplace-backend/pkg/auth"
	"github.com/angelmondragon/marketplace-backend/pkg/auth/session"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

// Auth requires a valid bearer token backed by a live session and puts the
// caller's id, role and session on the request context. A nil verifier skips
// the session lookup.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	if logg == nil {
		logg = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			claims, err := authenticate(r, cfg, verifier)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			userID, role := claims.UserID.String(), string(claims.Role)
			ctx = WithSessionID(WithRole(WithUserID(ctx, userID), role), claims.SessionID())
			ctx = logg.WithRole(logg.WithUserID(ctx, userID), role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, cfg config.JWTConfig, verifier session.AccessSessionChecker) (*pkgAuth.AccessTokenClaims, error) {
	raw := bearerToken(r)
	if raw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, raw)
	switch {
	case errors.Is(err, pkgAuth.ErrTokenExpired):
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "token expired")
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	case claims.SessionID() == "":
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	if verifier == nil {
		return claims, nil
	}
	live, err := verifier.HasSession(r.Context(), claims.SessionID())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	}
	if !live {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
	}
	return claims, nil
}

// bearerToken reads "Authorization: Bearer <jwt>". Browsers cannot set
// headers on a websocket upgrade, so ?token= is accepted as a fallback.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return strings.TrimSpace(r.URL.Query().Get("token"))
	}
	scheme, token, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(token)
	}
	return header
}
