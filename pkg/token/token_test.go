package token

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisdesk/booking-api/internal/model"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestNewServicesRejectShortSecret(t *testing.T) {
	_, err := NewAuthTokenService([]byte("short"))
	assert.ErrorIs(t, err, ErrSecretTooShort)

	_, err = NewCancelTokenService([]byte("short"))
	assert.ErrorIs(t, err, ErrSecretTooShort)
}

func TestAuthTokenRoundTrip(t *testing.T) {
	svc, err := NewAuthTokenService(testSecret)
	require.NoError(t, err)

	user := &model.User{
		ID:       uuid.New(),
		Email:    "reception@example.com",
		Role:     model.RoleStaff,
		FullName: "Front Desk",
	}

	signed, err := svc.Issue(user)
	require.NoError(t, err)

	claims, err := svc.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Role, claims.Role)
	assert.Equal(t, user.FullName, claims.FullName)
}

func TestAuthTokenRejectsWrongSecret(t *testing.T) {
	svc, err := NewAuthTokenService(testSecret)
	require.NoError(t, err)

	other, err := NewAuthTokenService([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	signed, err := svc.Issue(&model.User{ID: uuid.New(), Email: "a@b.c"})
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCancelTokenRoundTrip(t *testing.T) {
	svc, err := NewCancelTokenService(testSecret)
	require.NoError(t, err)

	apptID := uuid.New()
	signed, err := svc.Issue(apptID, time.Now().Add(48*time.Hour))
	require.NoError(t, err)

	got, err := svc.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, apptID, got)
}

func TestCancelTokenExpiresWithAppointmentDay(t *testing.T) {
	svc, err := NewCancelTokenService(testSecret)
	require.NoError(t, err)

	signed, err := svc.Issue(uuid.New(), time.Now().AddDate(0, 0, -2))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCancelTokenRejectsGarbageInput(t *testing.T) {
	svc, err := NewCancelTokenService(testSecret)
	require.NoError(t, err)

	signed, err := svc.Issue(uuid.New(), time.Now().Add(24*time.Hour))
	require.NoError(t, err)

	// Flip one character of the signature.
	last := signed[len(signed)-1]
	replacement := "A"
	if last == 'A' {
		replacement = "B"
	}
	tampered := signed[:len(signed)-1] + replacement

	cases := map[string]string{
		"empty":      "",
		"not a jwt":  "definitely-not-a-token",
		"truncated":  signed[:len(signed)/2],
		"tampered":   tampered,
		"no payload": strings.Split(signed, ".")[0],
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(input)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
