package domain

import "time"

// Role is the authorization level of an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User models a registered account as stored by the user directory.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	BirthDate    time.Time `json:"birth_date"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the outward representation of a User. It has no password field.
type PublicUser struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	BirthDate time.Time `json:"birth_date"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public projects u onto its outward representation.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FullName:  u.FullName,
		BirthDate: u.BirthDate,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Subject returns the identity snapshot embedded in tokens issued for u.
func (u *User) Subject() TokenSubject {
	return TokenSubject{ID: u.ID, Email: u.Email, Role: u.Role}
}

// UserUpdate is a partial update. Nil fields are left untouched.
type UserUpdate struct {
	FullName     *string
	BirthDate    *time.Time
	Email        *string
	PasswordHash *string
	Role         *Role
	IsActive     *bool
}

// Empty reports whether the update would change nothing.
func (u UserUpdate) Empty() bool {
	return u.FullName == nil && u.BirthDate == nil && u.Email == nil &&
		u.PasswordHash == nil && u.Role == nil && u.IsActive == nil
}

// Apply copies the set fields of u onto user.
func (u UserUpdate) Apply(user *User) {
	if u.FullName != nil {
		user.FullName = *u.FullName
	}
	if u.BirthDate != nil {
		user.BirthDate = *u.BirthDate
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
	if u.Role != nil {
		user.Role = *u.Role
	}
	if u.IsActive != nil {
		user.IsActive = *u.IsActive
	}
}

// AuthResult is returned by registration and login.
type AuthResult struct {
	User         PublicUser `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}
