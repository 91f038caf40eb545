// Package auth verifies bearer tokens and exposes the caller to the core
// as an Identity only: a user id plus group membership. Token issuance
// and user management live elsewhere.
package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt"

	"github.com/brickvest/brickvest/internal/errs"
)

// AdminGroup is the group whose members hold the administrator capability.
const AdminGroup = "admins"

// Identity is the authenticated caller as seen by the core.
type Identity struct {
	UserID string   `json:"userId"`
	Groups []string `json:"groups,omitempty"`
}

// IsAdmin reports whether the identity carries the administrator group.
func (id Identity) IsAdmin() bool {
	for _, g := range id.Groups {
		if g == AdminGroup {
			return true
		}
	}
	return false
}

// Verifier validates HMAC-signed bearer tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the given signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a token string and extracts the caller
// identity from its claims. The subject claim carries the user id; group
// membership comes from either "groups" or "cognito:groups".
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, errs.Forbiddenf("invalid token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, errs.Forbiddenf("invalid token claims")
	}

	identity := Identity{}
	if sub, ok := claims["sub"].(string); ok {
		identity.UserID = sub
	}
	if identity.UserID == "" {
		return Identity{}, errs.Forbiddenf("token has no subject")
	}

	for _, claim := range []string{"groups", "cognito:groups"} {
		if raw, ok := claims[claim].([]interface{}); ok {
			for _, g := range raw {
				if s, ok := g.(string); ok {
					identity.Groups = append(identity.Groups, s)
				}
			}
		}
	}
	return identity, nil
}

// VerifyHeader extracts and verifies the bearer token of an Authorization
// header value.
func (v *Verifier) VerifyHeader(header string) (Identity, error) {
	if header == "" {
		return Identity{}, errs.Forbiddenf("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Identity{}, errs.Forbiddenf("malformed authorization header")
	}
	return v.Verify(parts[1])
}
