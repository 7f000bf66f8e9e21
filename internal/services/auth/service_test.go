package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	key     []byte
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.key = []byte("test-signing-key")
	s.service = New(Config{SigningKey: s.key})
}

func (s *ServiceSuite) signToken(key []byte, claims Claims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	s.Require().NoError(err)
	return signed
}

func (s *ServiceSuite) validClaims(subject string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func (s *ServiceSuite) TestVerifyValidCredential() {
	token := s.signToken(s.key, s.validClaims("user-1"))

	identity, err := s.service.Verify(token)
	s.Require().NoError(err)
	s.Equal(model.Identity("user-1"), identity)
}

func (s *ServiceSuite) TestVerifyMissingCredential() {
	_, err := s.service.Verify("")
	s.ErrorIs(err, model.ErrMissingCredential)
}

func (s *ServiceSuite) TestVerifyWrongKey() {
	token := s.signToken([]byte("some-other-key"), s.validClaims("user-1"))

	_, err := s.service.Verify(token)
	s.ErrorIs(err, model.ErrInvalidCredential)
}

func (s *ServiceSuite) TestVerifyExpiredCredential() {
	claims := s.validClaims("user-1")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	token := s.signToken(s.key, claims)

	_, err := s.service.Verify(token)
	s.ErrorIs(err, model.ErrInvalidCredential)
}

func (s *ServiceSuite) TestVerifyGarbageCredential() {
	_, err := s.service.Verify("not-a-jwt")
	s.ErrorIs(err, model.ErrInvalidCredential)
}

func (s *ServiceSuite) TestVerifyMissingSubject() {
	claims := s.validClaims("")
	token := s.signToken(s.key, claims)

	_, err := s.service.Verify(token)
	s.ErrorIs(err, model.ErrInvalidCredential)
}

func (s *ServiceSuite) TestVerifyTokenWithoutExpiry() {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}
	token := s.signToken(s.key, claims)

	_, err := s.service.Verify(token)
	s.ErrorIs(err, model.ErrInvalidCredential)
}
