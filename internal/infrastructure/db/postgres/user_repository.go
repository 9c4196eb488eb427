package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"

	userColumns = `id::text, full_name, birth_date, email, password_hash, role, is_active, created_at, updated_at`
)

var _ ports.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	role := user.Role
	if !role.Valid() {
		role = domain.RoleUser
	}

	var row pgx.Row
	if user.ID != "" {
		if _, err := uuid.Parse(user.ID); err != nil {
			return nil, &domain.ValidationError{Field: "id", Message: "Invalid user id"}
		}
		row = r.pool.QueryRow(ctx, `
			INSERT INTO users (id, full_name, birth_date, email, password_hash, role, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+userColumns,
			user.ID, user.FullName, user.BirthDate, user.Email, user.PasswordHash, string(role), user.IsActive,
		)
	} else {
		row = r.pool.QueryRow(ctx, `
			INSERT INTO users (full_name, birth_date, email, password_hash, role, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+userColumns,
			user.FullName, user.BirthDate, user.Email, user.PasswordHash, string(role), user.IsActive,
		)
	}

	created, err := scanUser(row)
	if err != nil {
		return nil, mapError("create user", err)
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, mapError("find user by id", err)
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, mapError("find user by email", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapError("list users", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError("list users", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list users", err)
	}
	return users, nil
}

// Update applies the set fields of upd. updated_at is refreshed by the table
// trigger.
func (r *UserRepository) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	if upd.Empty() {
		return r.FindByID(ctx, id)
	}

	sets, args := updateClauses(upd)
	args = append(args, id)
	query := `UPDATE users SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) + ` RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError("update user", err)
	}
	return user, nil
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	row := r.pool.QueryRow(ctx, `UPDATE users SET is_active = $1 WHERE id = $2 RETURNING `+userColumns, active, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, mapError("set user active", err)
	}
	return user, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, mapError("check email", err)
	}
	return exists, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrUserNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.BirthDate,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

// updateClauses renders the SET list for upd with positional placeholders
// starting at $1. Column names are fixed; only values are parameters.
func updateClauses(upd domain.UserUpdate) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if upd.FullName != nil {
		add("full_name", *upd.FullName)
	}
	if upd.BirthDate != nil {
		add("birth_date", *upd.BirthDate)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.PasswordHash != nil {
		add("password_hash", *upd.PasswordHash)
	}
	if upd.Role != nil {
		add("role", string(*upd.Role))
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}
	return sets, args
}

// mapError translates driver errors into directory errors.
func mapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.ErrDuplicateEmail
		case pgCheckViolation:
			return &domain.ValidationError{Field: "role", Message: "Invalid role"}
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
