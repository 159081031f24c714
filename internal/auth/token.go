package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Proposito distinguishes session tokens from activation tokens; one can
// never be replayed as the other.
type Proposito string

const (
	PropositoSesion     Proposito = "sesion"
	PropositoActivacion Proposito = "activacion"
)

// ErrTokenVencido marks a token whose validity window has passed, distinct
// from a malformed or tampered one.
var ErrTokenVencido = errors.New("token vencido")

// ErrTokenInvalido marks a token with bad signature or wrong purpose.
var ErrTokenInvalido = errors.New("token inválido")

// TokenManager handles issuing and validating signed JWT tokens.
type TokenManager struct {
	secret        []byte
	sesionTTL     time.Duration
	activacionTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, sesionTTL, activacionTTL time.Duration) *TokenManager {
	if sesionTTL <= 0 {
		sesionTTL = 8 * time.Hour
	}
	if activacionTTL <= 0 {
		activacionTTL = 600 * time.Second
	}
	return &TokenManager{secret: []byte(secret), sesionTTL: sesionTTL, activacionTTL: activacionTTL}
}

// Claims describes the JWT payload.
type Claims struct {
	AgenteID  int64     `json:"agente_id"`
	Proposito Proposito `json:"proposito"`
	jwt.RegisteredClaims
}

// GenerateSesion issues a login session token for the agent.
func (tm *TokenManager) GenerateSesion(agenteID int64) (string, time.Time, error) {
	return tm.generate(agenteID, PropositoSesion, tm.sesionTTL)
}

// GenerateActivacion issues the short-lived opaque token returned by the
// identity-validation step.
func (tm *TokenManager) GenerateActivacion(agenteID int64) (string, time.Time, error) {
	return tm.generate(agenteID, PropositoActivacion, tm.activacionTTL)
}

func (tm *TokenManager) generate(agenteID int64, proposito Proposito, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		AgenteID:  agenteID,
		Proposito: proposito,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates signature, expiry and purpose, returning the claims.
func (tm *TokenManager) ParseToken(tokenStr string, proposito Proposito) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenVencido
		}
		return nil, ErrTokenInvalido
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Proposito != proposito {
		return nil, ErrTokenInvalido
	}
	return claims, nil
}
