package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int

	// findErr, when set, is returned by every lookup.
	findErr error
	// onFind runs once after the next FindByID has read its row.
	onFind func(id string)
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) add(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", r.seq)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Date(2026, 1, 1, 0, 0, r.seq, 0, time.UTC)
	}
	r.users[u.ID] = cloneUser(u)
	return cloneUser(u)
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	for _, u := range r.users {
		if u.Email == user.Email {
			r.mu.Unlock()
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.mu.Unlock()
	return r.add(cloneUser(user)), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	if r.findErr != nil {
		r.mu.Unlock()
		return nil, r.findErr
	}
	u, ok := r.users[id]
	found := cloneUser(u)
	hook := r.onFind
	r.onFind = nil
	r.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return found, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	upd.Apply(u)
	return cloneUser(u), nil
}

func (r *stubUserRepo) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	return r.Update(ctx, id, domain.UserUpdate{IsActive: &active})
}

func (r *stubUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// stubHasher prefixes instead of hashing and counts comparisons.
type stubHasher struct {
	compares int
}

func (h *stubHasher) Hash(plain string) (string, error) {
	return "hashed:" + plain, nil
}

func (h *stubHasher) Compare(plain, hash string) (bool, error) {
	h.compares++
	if !strings.HasPrefix(hash, "hashed:") {
		return false, errors.New("malformed hash")
	}
	return hash == "hashed:"+plain, nil
}

// stubTokens hands out opaque counters and remembers which kind each one is.
type stubTokens struct {
	n       int
	access  map[string]domain.TokenSubject
	refresh map[string]domain.TokenSubject
}

func newStubTokens() *stubTokens {
	return &stubTokens{
		access:  make(map[string]domain.TokenSubject),
		refresh: make(map[string]domain.TokenSubject),
	}
}

func (s *stubTokens) CreateAccessToken(subject domain.TokenSubject) (string, error) {
	s.n++
	tok := fmt.Sprintf("access-%d", s.n)
	s.access[tok] = subject
	return tok, nil
}

func (s *stubTokens) CreateRefreshToken(subject domain.TokenSubject) (string, error) {
	s.n++
	tok := fmt.Sprintf("refresh-%d", s.n)
	s.refresh[tok] = subject
	return tok, nil
}

func (s *stubTokens) VerifyAccessToken(token string) (*domain.TokenPayload, error) {
	sub, ok := s.access[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return &domain.TokenPayload{User: sub}, nil
}

func (s *stubTokens) VerifyRefreshToken(token string) (*domain.TokenPayload, error) {
	sub, ok := s.refresh[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return &domain.TokenPayload{User: sub}, nil
}

type stubStatusCache struct {
	values map[string]bool
	getErr error
	setErr error
	gets   int
}

func newStubStatusCache() *stubStatusCache {
	return &stubStatusCache{values: make(map[string]bool)}
}

func (c *stubStatusCache) Get(_ context.Context, userID string) (bool, bool, error) {
	c.gets++
	if c.getErr != nil {
		return false, false, c.getErr
	}
	v, ok := c.values[userID]
	return v, ok, nil
}

func (c *stubStatusCache) Set(_ context.Context, userID string, active bool) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.values[userID] = active
	return nil
}

func (c *stubStatusCache) SetIfAbsent(_ context.Context, userID string, active bool) error {
	if c.setErr != nil {
		return c.setErr
	}
	if _, ok := c.values[userID]; !ok {
		c.values[userID] = active
	}
	return nil
}

func (c *stubStatusCache) Invalidate(_ context.Context, userID string) error {
	delete(c.values, userID)
	return nil
}
