package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

// timingPassword is hashed once and compared against on unknown-email logins.
const timingPassword = "timing-equaliser"

// AuthService implements registration, login and token refresh.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenManager
	log    zerolog.Logger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenManager, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in domain.RegistrationInput) (*domain.AuthResult, error) {
	birthDate, err := in.Validate(s.now())
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(in.FullName),
		BirthDate:    birthDate,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	result, err := s.authResult(created)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return result, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if err := domain.ValidateLogin(email, password); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.equaliseTiming(password)
		s.log.Warn().Msg("login attempt for unknown email")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if !user.IsActive {
		s.log.Warn().Str("user_id", user.ID).Msg("login attempt on blocked account")
		return nil, domain.ErrAccountBlocked
	}

	ok, err := s.hasher.Compare(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		s.log.Warn().Str("user_id", user.ID).Msg("login attempt with wrong password")
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.authResult(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return result, nil
}

// RefreshToken rotates the token pair. The role and email come from the
// directory, not from the presented token. Earlier refresh tokens stay valid
// until they expire.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, domain.ErrInvalidToken
	}

	payload, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, payload.User.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrAccountBlocked
	}

	pair, err := s.issue(user.Subject())
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	s.log.Debug().Str("user_id", user.ID).Msg("token pair refreshed")
	return pair, nil
}

func (s *AuthService) authResult(user *domain.User) (*domain.AuthResult, error) {
	pair, err := s.issue(user.Subject())
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (s *AuthService) issue(subject domain.TokenSubject) (*domain.TokenPair, error) {
	access, err := s.tokens.CreateAccessToken(subject)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.CreateRefreshToken(subject)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// equaliseTiming spends one hash comparison so an unknown email costs about
// as much as a wrong password.
func (s *AuthService) equaliseTiming(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(timingPassword)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to prepare timing hash")
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Compare(password, s.dummyHash)
	}
}
