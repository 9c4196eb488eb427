package ports

import (
	"context"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

type UserService interface {
	GetUserByID(ctx context.Context, targetID string, requester domain.Identity) (*domain.PublicUser, error)
	GetAllUsers(ctx context.Context, requester domain.Identity) ([]domain.PublicUser, error)
	SetActiveStatus(ctx context.Context, targetID string, isActive bool, requester domain.Identity) (*domain.PublicUser, error)
	GetCurrentUser(ctx context.Context, requesterID string) (*domain.PublicUser, error)
	// IsUserActive never fails: any lookup error is reported as inactive.
	IsUserActive(ctx context.Context, userID string) bool
}
