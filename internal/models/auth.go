package models

import "github.com/golang-jwt/jwt/v5"

// APIClaims are the JWT claims carried by staff tokens. Tokens are
// minted out of band; the API only validates them.
type APIClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
