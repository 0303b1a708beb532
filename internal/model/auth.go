package model

import (
	"github.com/google/uuid"
)

// TokenClaims are the session claims carried by a signed token.
type TokenClaims struct {
	PrincipalID uuid.UUID
	Kind        PrincipalKind
	TokenID     string
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}
