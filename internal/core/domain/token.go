package domain

import "time"

// TokenSubject is the identity snapshot signed into access and refresh tokens.
type TokenSubject struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// TokenPayload is a verified token's content.
type TokenPayload struct {
	User      TokenSubject
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is a freshly minted access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
