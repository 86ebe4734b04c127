package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/praxisdesk/booking-api/internal/model"
)

// MinSecretLen is the minimum length of the shared signing secret.
const MinSecretLen = 32

const AuthTokenTTL = 24 * time.Hour

var (
	ErrSecretTooShort = errors.New("signing secret must be at least 32 bytes")
	ErrInvalidToken   = errors.New("invalid or expired token")
)

type authClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

type cancelClaims struct {
	AppointmentID string `json:"appointment_id"`
	jwt.RegisteredClaims
}

// AuthTokenService issues and verifies staff session tokens. Tokens are
// stateless: the server keeps no session table and cannot revoke one before
// it expires.
type AuthTokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthTokenService(secret []byte) (*AuthTokenService, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrSecretTooShort
	}
	return &AuthTokenService{secret: secret, ttl: AuthTokenTTL}, nil
}

func (s *AuthTokenService) Issue(user *model.User) (string, error) {
	now := time.Now()
	claims := authClaims{
		UserID:   user.ID.String(),
		Email:    user.Email,
		Role:     user.Role,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthTokenService) Verify(tokenStr string) (*model.TokenClaims, error) {
	var claims authClaims
	if err := s.parse(tokenStr, &claims); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &model.TokenClaims{
		UserID:   userID,
		Email:    claims.Email,
		Role:     claims.Role,
		FullName: claims.FullName,
	}, nil
}

// CancelTokenService issues and verifies appointment cancellation tokens.
// A token expires at the end of the appointment's own day, so it cannot
// outlive its usefulness.
type CancelTokenService struct {
	secret []byte
}

func NewCancelTokenService(secret []byte) (*CancelTokenService, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrSecretTooShort
	}
	return &CancelTokenService{secret: secret}, nil
}

func (s *CancelTokenService) Issue(appointmentID uuid.UUID, appointmentDate time.Time) (string, error) {
	now := time.Now()
	y, m, d := appointmentDate.Date()
	endOfDay := time.Date(y, m, d, 23, 59, 59, 0, appointmentDate.Location())

	claims := cancelClaims{
		AppointmentID: appointmentID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(endOfDay),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the bound appointment id. Any malformed, forged or expired
// input yields ErrInvalidToken; it never panics.
func (s *CancelTokenService) Verify(tokenStr string) (uuid.UUID, error) {
	var claims cancelClaims
	if err := s.parse(tokenStr, &claims); err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(claims.AppointmentID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

func (s *AuthTokenService) parse(tokenStr string, claims jwt.Claims) error {
	return parseHS256(tokenStr, claims, s.secret)
}

func (s *CancelTokenService) parse(tokenStr string, claims jwt.Claims) error {
	return parseHS256(tokenStr, claims, s.secret)
}

func parseHS256(tokenStr string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
