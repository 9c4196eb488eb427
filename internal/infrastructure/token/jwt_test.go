package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

var subject = domain.TokenSubject{ID: "u1", Email: "jane@x.com", Role: domain.RoleUser}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		AccessSecret:  "access-secret",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestManager_AccessRoundTrip(t *testing.T) {
	m := newTestManager(t)

	tok, err := m.CreateAccessToken(subject)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	payload, err := m.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if payload.User != subject {
		t.Fatalf("unexpected subject: %+v", payload.User)
	}
	if !payload.ExpiresAt.After(payload.IssuedAt) {
		t.Fatalf("expiry must follow issue time: %+v", payload)
	}
}

func TestManager_KindsAreNotInterchangeable(t *testing.T) {
	m := newTestManager(t)

	access, _ := m.CreateAccessToken(subject)
	refresh, _ := m.CreateRefreshToken(subject)

	if access == refresh {
		t.Fatalf("access and refresh tokens must differ")
	}
	if _, err := m.VerifyRefreshToken(access); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("access token verified as refresh: %v", err)
	}
	if _, err := m.VerifyAccessToken(refresh); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("refresh token verified as access: %v", err)
	}
	if _, err := m.VerifyRefreshToken(refresh); err != nil {
		t.Fatalf("refresh token rejected: %v", err)
	}
}

func TestManager_Expired(t *testing.T) {
	m := newTestManager(t)
	issued := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	tok, err := m.CreateAccessToken(subject)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	m.now = func() time.Time { return issued.Add(14 * time.Minute) }
	if _, err := m.VerifyAccessToken(tok); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	m.now = func() time.Time { return issued.Add(16 * time.Minute) }
	if _, err := m.VerifyAccessToken(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestManager_RejectsGarbageAndForeignSignatures(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.VerifyAccessToken("not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		User: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("someone-else"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.VerifyAccessToken(forged); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestManager_RequiresExpiry(t *testing.T) {
	m := newTestManager(t)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{User: subject}).SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.VerifyAccessToken(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for token without exp, got %v", err)
	}
}

func TestManager_RejectsNoneAlgorithm(t *testing.T) {
	m := newTestManager(t)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims{
		User: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.VerifyAccessToken(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg none, got %v", err)
	}
}

func TestNewManager_Validation(t *testing.T) {
	if _, err := NewManager(Config{AccessSecret: "same", RefreshSecret: "same", AccessTTL: time.Minute, RefreshTTL: time.Hour}); err == nil {
		t.Fatalf("expected error for equal secrets")
	}
	if _, err := NewManager(Config{AccessSecret: "a", RefreshSecret: "b"}); err == nil {
		t.Fatalf("expected error for zero lifetimes")
	}
	if _, err := NewManager(Config{AccessTTL: time.Minute, RefreshTTL: time.Hour}); err == nil {
		t.Fatalf("expected error for missing secrets")
	}
}

func TestManager_TokensAreUniquePerIssue(t *testing.T) {
	m := newTestManager(t)
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	a, err := m.CreateAccessToken(subject)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := m.CreateAccessToken(subject)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a == b {
		t.Fatalf("two tokens issued in the same second must differ")
	}
}
