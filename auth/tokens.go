// Package auth implements the role selector for the programmatic API: a
// caller picks supplier or reseller and receives a signed token carrying that
// role. The controller re-checks the role on every mutation, so write scoping
// does not rely on the presentation layer hiding controls. There are no user
// accounts; the token attests a role choice, nothing more.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"contractflow/contract"
)

// ErrInvalidToken signals a token that is missing, malformed, expired, or not
// signed with this service's secret.
var ErrInvalidToken = errors.New("auth: invalid role token")

const defaultTokenTTL = 24 * time.Hour

// Service issues and verifies role tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a role-token service signing with the given secret.
func NewService(secret string) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    defaultTokenTTL,
		now:    time.Now,
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// IssueRoleToken creates a signed token for the selected role.
func (s *Service) IssueRoleToken(role contract.Role) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("auth: invalid role %q", role)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// VerifyRoleToken validates a token and returns the role it carries.
func (s *Service) VerifyRoleToken(tokenString string) (contract.Role, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	role := contract.Role(roleStr)
	if !role.Valid() {
		return "", ErrInvalidToken
	}
	return role, nil
}
