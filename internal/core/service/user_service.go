package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

// StatusCache abstracts the active-flag cache (Redis) consulted on every
// authenticated request.
type StatusCache interface {
	Get(ctx context.Context, userID string) (active, found bool, err error)
	Set(ctx context.Context, userID string, active bool) error
	// SetIfAbsent writes only when no entry exists, so a fill never
	// overwrites a status change that landed first.
	SetIfAbsent(ctx context.Context, userID string, active bool) error
	Invalidate(ctx context.Context, userID string) error
}

type noopStatusCache struct{}

func (noopStatusCache) Get(context.Context, string) (bool, bool, error) { return false, false, nil }
func (noopStatusCache) Set(context.Context, string, bool) error         { return nil }
func (noopStatusCache) SetIfAbsent(context.Context, string, bool) error { return nil }
func (noopStatusCache) Invalidate(context.Context, string) error        { return nil }

type userService struct {
	repo  ports.UserRepository
	cache StatusCache
	log   zerolog.Logger
}

// NewUserService returns a UserService implementation. cache may be nil.
func NewUserService(repo ports.UserRepository, cache StatusCache, log zerolog.Logger) ports.UserService {
	if cache == nil {
		cache = noopStatusCache{}
	}
	return &userService{repo: repo, cache: cache, log: log}
}

func (s *userService) GetUserByID(ctx context.Context, targetID string, requester domain.Identity) (*domain.PublicUser, error) {
	if !requester.CanAccess(targetID) {
		return nil, domain.ErrAccessDenied
	}

	user, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	public := user.Public()
	return &public, nil
}

func (s *userService) GetAllUsers(ctx context.Context, requester domain.Identity) ([]domain.PublicUser, error) {
	if !requester.IsAdmin() {
		return nil, domain.ErrAdminRequired
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// SetActiveStatus blocks or unblocks targetID. Existence is checked before the
// self-lockout rule, and the update itself reports a row that vanished in
// between as not found.
func (s *userService) SetActiveStatus(ctx context.Context, targetID string, isActive bool, requester domain.Identity) (*domain.PublicUser, error) {
	if !requester.CanAccess(targetID) {
		return nil, domain.ErrAccessDenied
	}

	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		return nil, fmt.Errorf("set active status: %w", err)
	}

	if requester.IsAdmin() && requester.UserID == targetID && !isActive {
		return nil, domain.ErrSelfLockout
	}

	updated, err := s.repo.SetActive(ctx, targetID, isActive)
	if err != nil {
		return nil, fmt.Errorf("set active status: %w", err)
	}

	s.refreshCache(ctx, updated.ID, updated.IsActive)

	s.log.Info().
		Str("user_id", updated.ID).
		Str("by", requester.UserID).
		Bool("active", updated.IsActive).
		Msg("user status changed")

	public := updated.Public()
	return &public, nil
}

func (s *userService) GetCurrentUser(ctx context.Context, requesterID string) (*domain.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	public := user.Public()
	return &public, nil
}

func (s *userService) IsUserActive(ctx context.Context, userID string) bool {
	active, found, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("status cache read failed, using directory")
	} else if found {
		return active
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Str("user_id", userID).Msg("active check failed")
		}
		return false
	}

	if err := s.cache.SetIfAbsent(ctx, userID, user.IsActive); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("status cache fill failed")
	}
	return user.IsActive
}

// refreshCache writes the new flag through; if that fails the key is dropped
// so readers fall back to the directory.
func (s *userService) refreshCache(ctx context.Context, userID string, active bool) {
	err := s.cache.Set(ctx, userID, active)
	if err == nil {
		return
	}
	s.log.Warn().Err(err).Str("user_id", userID).Msg("status cache write failed, invalidating")

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("status cache invalidation failed")
	}
}
