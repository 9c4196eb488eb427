// Package seed loads bootstrap accounts from a YAML file. It is how the first
// admin comes to exist, since self-registration always yields the user role.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

// File is the document layout:
//
//	users:
//	  - full_name: Root Admin
//	    birth_date: 1990-01-01
//	    email: admin@example.com
//	    password: change-me-now
//	    role: admin
type File struct {
	Users []User `yaml:"users"`
}

type User struct {
	FullName  string `yaml:"full_name"`
	BirthDate string `yaml:"birth_date"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
}

// Result counts what Apply did.
type Result struct {
	Created int
	Updated int
	Skipped int
}

// Load reads and validates a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, u := range f.Users {
		if err := u.validate(); err != nil {
			return nil, fmt.Errorf("seed user %d (%s): %w", i, u.Email, err)
		}
	}
	return &f, nil
}

func (u User) role() domain.Role {
	if u.Role == "" {
		return domain.RoleUser
	}
	return domain.Role(u.Role)
}

func (u User) validate() error {
	if strings.TrimSpace(u.FullName) == "" {
		return errors.New("full_name is required")
	}
	if !domain.ValidEmail(u.Email) {
		return errors.New("invalid email")
	}
	if err := domain.ValidateNewPassword(u.Password); err != nil {
		return err
	}
	if _, err := domain.ParseBirthDate(u.BirthDate); err != nil {
		return err
	}
	if !u.role().Valid() {
		return fmt.Errorf("unknown role %q", u.Role)
	}
	return nil
}

// Apply creates every missing account as active. An existing account keeps
// its password and status; only a differing role is brought in line.
func Apply(ctx context.Context, f *File, repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) (Result, error) {
	var res Result
	for _, u := range f.Users {
		role := u.role()

		existing, err := repo.FindByEmail(ctx, u.Email)
		switch {
		case err == nil:
			if existing.Role == role {
				res.Skipped++
				continue
			}
			if _, err := repo.Update(ctx, existing.ID, domain.UserUpdate{Role: &role}); err != nil {
				return res, fmt.Errorf("seed %s: %w", u.Email, err)
			}
			log.Info().Str("user_id", existing.ID).Str("role", string(role)).Msg("seeded role applied")
			res.Updated++
			continue
		case !errors.Is(err, domain.ErrUserNotFound):
			return res, fmt.Errorf("seed %s: %w", u.Email, err)
		}

		birthDate, _ := domain.ParseBirthDate(u.BirthDate)
		hash, err := hasher.Hash(u.Password)
		if err != nil {
			return res, fmt.Errorf("seed %s: %w", u.Email, err)
		}

		now := time.Now().UTC()
		created, err := repo.Create(ctx, &domain.User{
			ID:           uuid.NewString(),
			FullName:     strings.TrimSpace(u.FullName),
			BirthDate:    birthDate,
			Email:        u.Email,
			PasswordHash: hash,
			Role:         role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return res, fmt.Errorf("seed %s: %w", u.Email, err)
		}
		log.Info().Str("user_id", created.ID).Str("role", string(role)).Msg("seeded user created")
		res.Created++
	}
	return res, nil
}

// FromFile loads path and applies it. An empty path is a no-op.
func FromFile(ctx context.Context, path string, repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) (Result, error) {
	if path == "" {
		return Result{}, nil
	}
	f, err := Load(path)
	if err != nil {
		return Result{}, err
	}
	return Apply(ctx, f, repo, hasher, log)
}
