// Package users implements the user directory: the full set of registered
// accounts, addressable by id and by email.
package users

import (
	"context"

	"github.com/dmitrijs2005/coinkeeper/internal/models"
)

// Repository is the user directory. Accounts are created and mutated but
// never deleted; there is no account-deletion path.
type Repository interface {
	// Create registers a new user together with the opaque salt value the
	// digest was computed with; both land in one transaction so the stored
	// digest always matches a stored salt. If user.ID is empty a new unique
	// id is assigned. Fails with common.ErrDuplicateEmail when the email is
	// taken (exact, case-sensitive match).
	Create(ctx context.Context, user *models.User, salt []byte) (*models.User, error)

	// GetByEmail returns the user registered under email, or
	// common.ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrUserNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdateCredentials replaces the stored digest and salt of the user with
	// the given id in one transaction. A digest is never persisted without
	// the salt it was computed with. Fails with common.ErrUserNotFound if no
	// matching id.
	UpdateCredentials(ctx context.Context, id string, newDigest string, salt []byte) error

	// UpdateProfile merges non-empty name/email into the user record.
	// An email change moves the directory index atomically and fails with
	// common.ErrDuplicateEmail if the new email is taken.
	UpdateProfile(ctx context.Context, id string, name, email string) (*models.User, error)
}
