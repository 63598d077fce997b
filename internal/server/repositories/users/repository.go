// Package users declares and implements persistence of user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository stores users. Implementations return common.ErrorNotFound for
// missing rows, common.ErrorConflict when the email is already taken and
// wrap every other storage failure in common.ErrorPersistence.
type Repository interface {
	// Create inserts user and fills ID-independent timestamps.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail finds a user by (case-insensitive) email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// Update saves the mutable fields of an existing user.
	Update(ctx context.Context, user *models.User) error
}
