// Package token define las respuestas de los endpoints que exponen el token
// verificado del request.
package token

import (
	"github.com/dropDatabas3/jwtvalidator/internal/claims"
	"github.com/dropDatabas3/jwtvalidator/internal/identity"
)

// MeResponse es la respuesta de GET /v1/me.
type MeResponse struct {
	Identity  identity.Identity `json:"identity"`
	Display   string            `json:"display"`
	UniqueIDs map[string]string `json:"uniqueIds"`
	Payload   *claims.Payload   `json:"payload,omitempty"`
	Claims    claims.Claims     `json:"claims,omitempty"`
}

// UserResponse es la respuesta de GET /v1/users/{userID}.
type UserResponse struct {
	UserID   string            `json:"userId"`
	Identity identity.Identity `json:"identity"`
}
