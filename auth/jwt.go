// Package auth turns identity tokens into user identities.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lightning66/GiftMe/models"
)

var (
	// ErrMissingToken is returned for an empty token.
	ErrMissingToken = errors.New("auth: missing token")

	// ErrInvalidToken is returned when a token cannot be decoded or verified.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Identity is the subset of token claims the service uses.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// UserInfo converts the identity to the stored user fields.
func (id *Identity) UserInfo() models.UserInfo {
	return models.UserInfo{ID: id.Subject, Email: id.Email, Name: id.Name, Picture: id.Picture}
}

// Verifier validates a token and returns its identity.
type Verifier interface {
	Verify(token string) (*Identity, error)
}

// JWTVerifier reads identity claims from a JWT.
//
// With a secret, tokens must carry a valid HS256 signature and unexpired
// registered claims. Without one, claims are decoded but NOT verified, which
// is only suitable when tokens come from a trusted front end.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier creates a verifier. An empty secret selects decode-only
// mode.
func NewJWTVerifier(secret string) *JWTVerifier {
	v := &JWTVerifier{}
	if secret != "" {
		v.secret = []byte(secret)
		v.parser = jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	} else {
		v.parser = jwt.NewParser()
	}
	return v
}

// Verifies reports whether signatures are checked.
func (v *JWTVerifier) Verifies() bool { return v.secret != nil }

func (v *JWTVerifier) Verify(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := jwt.MapClaims{}
	var err error
	if v.secret != nil {
		_, err = v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return v.secret, nil
		})
	} else {
		_, _, err = v.parser.ParseUnverified(token, claims)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id := &Identity{
		Subject: stringClaim(claims, "sub"),
		Email:   stringClaim(claims, "email"),
		Name:    stringClaim(claims, "name"),
		Picture: stringClaim(claims, "picture"),
	}
	if id.Email == "" {
		return nil, fmt.Errorf("%w: no email claim", ErrInvalidToken)
	}
	return id, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
