package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/arcadialabs/landgrid-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Wallet string
	Role   enums.ActorRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	Wallet string          `json:"wallet"`
	Role   enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
