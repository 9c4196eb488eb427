package ports

import "github.com/99minutos/accounts-service/internal/core/domain"

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Compare returns false on mismatch and an error only for a malformed hash.
	Compare(plain, hash string) (bool, error)
}

// TokenManager mints and verifies access and refresh tokens. Verification
// failures of any kind are reported as domain.ErrInvalidToken.
type TokenManager interface {
	CreateAccessToken(subject domain.TokenSubject) (string, error)
	CreateRefreshToken(subject domain.TokenSubject) (string, error)
	VerifyAccessToken(token string) (*domain.TokenPayload, error)
	VerifyRefreshToken(token string) (*domain.TokenPayload, error)
}
