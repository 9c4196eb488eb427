// Package memory is an in-process user directory for local development and
// end-to-end tests. Data is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

type entry struct {
	user *domain.User
	seq  uint64
}

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entry
	byEmail map[string]string
	seq     uint64
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*entry),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func clone(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return nil, domain.ErrDuplicateEmail
	}

	stored := clone(user)
	if strings.TrimSpace(stored.ID) == "" {
		stored.ID = uuid.NewString()
	}
	if _, taken := r.byID[stored.ID]; taken {
		return nil, fmt.Errorf("%w: duplicate id %s", domain.ErrStorage, stored.ID)
	}
	if !stored.Role.Valid() {
		stored.Role = domain.RoleUser
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now().UTC()
	}
	stored.UpdatedAt = stored.CreatedAt

	r.seq++
	r.byID[stored.ID] = &entry{user: stored, seq: r.seq}
	r.byEmail[stored.Email] = stored.ID
	return clone(stored), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(e.user), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(r.byID[id].user), nil
}

// List orders by creation time, newest first, with insertion order breaking ties.
func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	entries := make([]entry, 0, len(r.byID))
	for _, e := range r.byID {
		entries = append(entries, entry{user: clone(e.user), seq: e.seq})
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.user.CreatedAt.Equal(b.user.CreatedAt) {
			return a.user.CreatedAt.After(b.user.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]*domain.User, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.user)
	}
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Empty() {
		return clone(e.user), nil
	}
	if upd.Email != nil && *upd.Email != e.user.Email {
		if _, taken := r.byEmail[*upd.Email]; taken {
			return nil, domain.ErrDuplicateEmail
		}
	}
	if upd.Role != nil && !upd.Role.Valid() {
		return nil, &domain.ValidationError{Field: "role", Message: "Invalid role"}
	}

	next := clone(e.user)
	upd.Apply(next)
	next.UpdatedAt = r.now().UTC()

	if next.Email != e.user.Email {
		delete(r.byEmail, e.user.Email)
		r.byEmail[next.Email] = id
	}
	e.user = next
	return clone(next), nil
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	return r.Update(ctx, id, domain.UserUpdate{IsActive: &active})
}

func (r *UserRepository) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byEmail, e.user.Email)
	delete(r.byID, id)
	return nil
}
