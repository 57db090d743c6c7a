package types

import "github.com/google/uuid"

// TokenClaims carries the identity resolved from a bearer token.
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
}
