// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. EmailAddress is stored trimmed and lower-cased and is
// unique across all users. PasswordHash is a bcrypt digest, never a raw password.
type User struct {
	ID           string
	GivenName    string
	MaidenName   string
	EmailAddress string
	PasswordHash string
	IsActivated  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the view of a User that may leave the server: it is the
// bearer-token payload and the shape returned by the HTTP API.
type PublicUser struct {
	ID           string    `json:"id"`
	GivenName    string    `json:"given_name"`
	MaidenName   string    `json:"maiden_name"`
	EmailAddress string    `json:"email_address"`
	IsActivated  bool      `json:"is_activated"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public projects u onto PublicUser, dropping the password hash.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		GivenName:    u.GivenName,
		MaidenName:   u.MaidenName,
		EmailAddress: u.EmailAddress,
		IsActivated:  u.IsActivated,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
