// internal/auth/jwt.go
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/asauntung/bumdes/internal/models"
)

type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

type Claims struct {
	Username string `json:"sub_name"`
	Role     string `json:"role"`
	Name     string `json:"name,omitempty"`
	Type     string `json:"typ"` // "access" | "refresh"
	jwt.RegisteredClaims
}

func (c *Claims) Principal() models.Principal {
	return models.Principal{Username: c.Username, Role: models.Role(c.Role), Name: c.Name}
}

var ErrInvalidToken = errors.New("invalid token")

// GeneratePair issues an access and a refresh token for p.
func (tm *TokenManager) GeneratePair(p models.Principal) (access string, refresh string, accessExp time.Time, err error) {
	now := time.Now()

	access, err = tm.sign(p, "access", now, tm.accessTTL, tm.accessSecret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	refresh, err = tm.sign(p, "refresh", now, tm.refreshTTL, tm.refreshSecret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return access, refresh, now.Add(tm.accessTTL), nil
}

func (tm *TokenManager) sign(p models.Principal, typ string, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := Claims{
		Username: p.Username,
		Role:     string(p.Role),
		Name:     p.Name,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAccess validates an access token.
func (tm *TokenManager) ParseAccess(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, "access", tm.accessSecret)
}

// ParseRefresh validates a refresh token.
func (tm *TokenManager) ParseRefresh(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, "refresh", tm.refreshSecret)
}

func (tm *TokenManager) parse(tokenStr, typ string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tm.issuer))
	if err != nil || claims.Type != typ {
		return nil, ErrInvalidToken
	}
	if !claims.Principal().Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
