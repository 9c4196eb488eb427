package ports

import (
	"context"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

// UserRepository is the user directory. Lookups of an unknown id or email
// return domain.ErrUserNotFound; a clashing email on write returns
// domain.ErrDuplicateEmail; any other failure wraps domain.ErrStorage.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns every user, newest first.
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id string) error
}
