// Package models defines the data records CoinKeeper persists locally.
package models

import "time"

// User is the permanent account record kept in the user directory.
// PasswordDigest is argon2id(password, salt); the salt itself is stored
// under a separate key.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	PasswordDigest string    `json:"password_digest"`
	CreatedAt      time.Time `json:"created_at"`
}

// PublicUser is the projection of a User that is safe to keep next to the
// session (no digest). This is what the UI sees as "the current user".
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public returns the digest-free projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}
