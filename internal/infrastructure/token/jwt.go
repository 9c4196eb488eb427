// Package token issues and verifies HS256-signed access and refresh tokens.
// Both kinds carry the same claims; they differ only in secret and lifetime.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

// Config holds the signing material for both token kinds.
type Config struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

type claims struct {
	User domain.TokenSubject `json:"user"`
	jwt.RegisteredClaims
}

type key struct {
	secret []byte
	ttl    time.Duration
}

// Manager implements ports.TokenManager.
type Manager struct {
	access  key
	refresh key
	now     func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("token: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token: lifetimes must be positive")
	}
	return &Manager{
		access:  key{secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL},
		refresh: key{secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL},
		now:     time.Now,
	}, nil
}

func (m *Manager) CreateAccessToken(subject domain.TokenSubject) (string, error) {
	return m.sign(subject, m.access)
}

func (m *Manager) CreateRefreshToken(subject domain.TokenSubject) (string, error) {
	return m.sign(subject, m.refresh)
}

func (m *Manager) VerifyAccessToken(token string) (*domain.TokenPayload, error) {
	return m.verify(token, m.access)
}

func (m *Manager) VerifyRefreshToken(token string) (*domain.TokenPayload, error) {
	return m.verify(token, m.refresh)
}

func (m *Manager) sign(subject domain.TokenSubject, k key) (string, error) {
	now := m.now()
	c := claims{
		User: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(k.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(k.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// verify collapses every failure (bad signature, expiry, malformed input) into
// domain.ErrInvalidToken.
func (m *Manager) verify(token string, k key) (*domain.TokenPayload, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return k.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if c.User.ID == "" || !c.User.Role.Valid() {
		return nil, domain.ErrInvalidToken
	}

	payload := &domain.TokenPayload{User: c.User, ExpiresAt: c.ExpiresAt.Time}
	if c.IssuedAt != nil {
		payload.IssuedAt = c.IssuedAt.Time
	}
	return payload, nil
}
