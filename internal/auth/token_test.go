package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, 10*time.Minute)

	token, expira, err := tm.GenerateSesion(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expira, 5*time.Second)

	claims, err := tm.ParseToken(token, PropositoSesion)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AgenteID)
	assert.Equal(t, PropositoSesion, claims.Proposito)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManagerRechazaPropositoCruzado(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, 10*time.Minute)

	activacion, _, err := tm.GenerateActivacion(7)
	require.NoError(t, err)

	// An activation token must never open a session, and vice versa.
	_, err = tm.ParseToken(activacion, PropositoSesion)
	assert.ErrorIs(t, err, ErrTokenInvalido)

	sesion, _, err := tm.GenerateSesion(7)
	require.NoError(t, err)
	_, err = tm.ParseToken(sesion, PropositoActivacion)
	assert.ErrorIs(t, err, ErrTokenInvalido)
}

func TestTokenManagerRechazaOtroSecreto(t *testing.T) {
	tm := NewTokenManager("secreto-a", time.Hour, 10*time.Minute)
	otro := NewTokenManager("secreto-b", time.Hour, 10*time.Minute)

	token, _, err := tm.GenerateSesion(1)
	require.NoError(t, err)

	_, err = otro.ParseToken(token, PropositoSesion)
	assert.ErrorIs(t, err, ErrTokenInvalido)
}

func TestTokenManagerDistingueVencimiento(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, 10*time.Minute)
	vencidos := &TokenManager{secret: []byte("test-secret"), sesionTTL: -time.Minute, activacionTTL: -time.Minute}

	token, _, err := vencidos.GenerateSesion(9)
	require.NoError(t, err)

	_, err = tm.ParseToken(token, PropositoSesion)
	assert.ErrorIs(t, err, ErrTokenVencido)
}
