package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/barber-api/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "barber-api", time.Hour)
	p := &model.Principal{
		UserID:       uuid.New(),
		Email:        "owner@example.com",
		BusinessName: "Navalha de Ouro",
		FullName:     "Carlos Lima",
	}

	token, err := svc.GenerateAccessToken(p)
	require.NoError(t, err)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret", "", time.Hour).GenerateAccessToken(&model.Principal{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = NewJWTService("other", "", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := &jwtService{secret: []byte("secret"), expiry: -time.Minute}
	token, err := svc.GenerateAccessToken(&model.Principal{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongIssuer(t *testing.T) {
	token, err := NewJWTService("secret", "someone-else", time.Hour).GenerateAccessToken(&model.Principal{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = NewJWTService("secret", "barber-api", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
