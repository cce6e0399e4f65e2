package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose scopes an emailed token to one action
type Purpose string

const (
	PurposeVerifyEmail   Purpose = "verify_email"
	PurposeResetPassword Purpose = "reset_password"
)

const tokenIssuer = "clinic-api"

type actionClaims struct {
	Purpose  Purpose `json:"purpose"`
	Continue string  `json:"continue,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(uid string, purpose Purpose, continueURL string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := actionClaims{
		Purpose:  purpose,
		Continue: continueURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", purpose, err)
	}
	return signed, nil
}

func (s *Service) parseToken(raw string, purpose Purpose) (*actionClaims, error) {
	claims := &actionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, fmt.Errorf("token purpose %q, want %q", claims.Purpose, purpose)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}
