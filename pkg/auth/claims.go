package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	SessionID string
}

// AccessTokenClaims is the typed JWT issued to clients. The registered jti
// doubles as the redis session id.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// SessionID returns the jti the token was minted with.
func (c *AccessTokenClaims) SessionID() string {
	if c == nil {
		return ""
	}
	return c.ID
}
