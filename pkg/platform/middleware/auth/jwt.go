package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "terralegit/pkg/domain"
)

const issuer = "terralegit"

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// HS256Validator validates HMAC-signed bearer tokens carrying sub and role.
type HS256Validator struct {
	key []byte
}

// NewHS256Validator creates a validator for key.
func NewHS256Validator(key string) *HS256Validator {
	return &HS256Validator{key: []byte(key)}
}

func (v *HS256Validator) ValidateToken(tokenString string) (*JWTClaims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &JWTClaims{Subject: claims.Subject, Role: role}, nil
}

// Sign issues a token for subject with role. Used by collaborators and tests.
func (v *HS256Validator) Sign(subject string, role id.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
}
