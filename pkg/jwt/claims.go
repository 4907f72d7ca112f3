package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the API token claims. Subject names the client.
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}
