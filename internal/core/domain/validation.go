package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinFullNameLength = 2
	MinPasswordLength = 6
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
	MinAge           = 13
	MaxAge           = 120
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// birthDateLayouts are tried in order by ParseBirthDate.
var birthDateLayouts = []string{time.DateOnly, time.RFC3339, time.RFC3339Nano}

// ValidEmail performs a structural check: local part, "@", and a domain with a dot.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPassword reports whether password meets the minimum length.
func ValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

// ParseBirthDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
// The calendar day is kept as written, whatever the offset.
func ParseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, invalid("birth_date", "Birth date is required")
	}
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, invalid("birth_date", "Invalid birth date")
}

// AgeInYears is the difference between calendar years. It ignores month and
// day, so it can be off by one around a birthday.
func AgeInYears(birthDate, now time.Time) int {
	return now.UTC().Year() - birthDate.UTC().Year()
}

// RegistrationInput carries the raw registration fields.
type RegistrationInput struct {
	FullName  string
	BirthDate string
	Email     string
	Password  string
}

// Validate checks the registration rules in order and returns the parsed birth
// date on success.
func (in RegistrationInput) Validate(now time.Time) (time.Time, error) {
	if utf8.RuneCountInString(strings.TrimSpace(in.FullName)) < MinFullNameLength {
		return time.Time{}, invalid("full_name", "Full name must be at least 2 characters long")
	}
	if !ValidEmail(in.Email) {
		return time.Time{}, invalid("email", "Invalid email format")
	}
	if err := ValidateNewPassword(in.Password); err != nil {
		return time.Time{}, err
	}

	birthDate, err := ParseBirthDate(in.BirthDate)
	if err != nil {
		return time.Time{}, err
	}
	if age := AgeInYears(birthDate, now); age < MinAge || age > MaxAge {
		return time.Time{}, invalid("birth_date", "Invalid birth date")
	}
	return birthDate, nil
}

// ValidateLogin checks the login fields.
func ValidateLogin(email, password string) error {
	if !ValidEmail(email) {
		return invalid("email", "Invalid email format")
	}
	if password == "" {
		return invalid("password", "Password is required")
	}
	return nil
}

// ValidateNewPassword applies the rules for a password about to be hashed.
func ValidateNewPassword(password string) error {
	if !ValidPassword(password) {
		return invalid("password", "Password must be at least 6 characters long")
	}
	if len(password) > MaxPasswordBytes {
		return invalid("password", "Password must be at most 72 bytes long")
	}
	return nil
}
