package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token audiences keep a studio token from passing as a session and back.
const (
	audienceSession = "session"
	audienceStudio  = "studio"
)

const (
	sessionTTL = 24 * time.Hour
	studioTTL  = 2 * time.Hour
)

// StudioClaims authorize one connection to one studio.
type StudioClaims struct {
	StudioID string `json:"studio"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Service) registered(subject, audience string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *Service) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *Service) parse(tokenString string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithTimeFunc(s.now),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func (s *Service) keyFunc(*jwt.Token) (interface{}, error) {
	return s.jwtSecret, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	signed, err := s.sign(s.registered(userID, audienceSession, sessionTTL))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken returns the user id of a session token.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	if err := s.parse(tokenString, &claims, audienceSession); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token subject: %w", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// IssueStudioToken signs a short-lived token for joining studioID.
func (s *Service) IssueStudioToken(studioID, userID, role string) (string, error) {
	signed, err := s.sign(StudioClaims{
		StudioID:         studioID,
		Role:             role,
		RegisteredClaims: s.registered(userID, audienceStudio, studioTTL),
	})
	if err != nil {
		return "", fmt.Errorf("sign studio token: %w", err)
	}
	return signed, nil
}

// ValidateStudioToken checks a studio token and returns its claims.
func (s *Service) ValidateStudioToken(tokenString string) (*StudioClaims, error) {
	var claims StudioClaims
	if err := s.parse(tokenString, &claims, audienceStudio); err != nil {
		return nil, err
	}
	if claims.StudioID == "" {
		return nil, fmt.Errorf("token studio: %w", ErrInvalidToken)
	}
	switch claims.Role {
	case RoleHost, RoleViewer:
	default:
		return nil, fmt.Errorf("token role %q: %w", claims.Role, ErrInvalidToken)
	}
	return &claims, nil
}
