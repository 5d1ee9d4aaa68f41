package auth

import (
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.ActorRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID       `json:"user_id"`
	Role   enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the authenticated identity a request acts on behalf of.
type Actor struct {
	ID   uuid.UUID
	Role enums.ActorRole
}

// ActorFromClaims maps verified claims onto an Actor.
func ActorFromClaims(claims *AccessTokenClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{ID: claims.UserID, Role: claims.Role}
}

// IsPrivileged reports whether the actor is admin-equivalent.
func (a Actor) IsPrivileged() bool {
	return a.Role.IsPrivileged()
}

// Owns reports whether the actor is the recorded owner.
func (a Actor) Owns(ownerID *uuid.UUID) bool {
	return ownerID != nil && a.ID != uuid.Nil && *ownerID == a.ID
}

// IsAnonymous reports whether no identity is attached.
func (a Actor) IsAnonymous() bool {
	return a.ID == uuid.Nil
}
