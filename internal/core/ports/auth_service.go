package ports

import (
	"context"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, in domain.RegistrationInput) (*domain.AuthResult, error)
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}
