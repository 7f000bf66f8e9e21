package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
)

// Claims are the JWT claims the external identity provider puts in a
// connection credential. The subject carries the stable user id.
type Claims struct {
	DisplayName string `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}

// Service verifies inbound connection credentials against the shared
// signing key. Verification happens once, synchronously, at connection
// establishment; it has no side effects.
type Service struct {
	key    []byte
	parser *jwt.Parser
}

// Config holds configuration for the credential verifier
type Config struct {
	// SigningKey is the shared HMAC key the identity provider signs
	// credentials with
	SigningKey []byte
}

// New creates a new credential verifier
func New(cfg Config) *Service {
	return &Service{
		key: cfg.SigningKey,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify validates a raw bearer credential and returns the identity it
// asserts. It fails with model.ErrMissingCredential when the credential
// is absent and model.ErrInvalidCredential when the signature or expiry
// check fails.
func (s *Service) Verify(rawCredential string) (model.Identity, error) {
	if rawCredential == "" {
		return "", model.ErrMissingCredential
	}

	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(rawCredential, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		return "", errors.Join(model.ErrInvalidCredential, err)
	}

	if claims.Subject == "" {
		return "", model.ErrInvalidCredential
	}

	return model.Identity(claims.Subject), nil
}
