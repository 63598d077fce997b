// Package verificationtokens declares the server-side repository contract for
// single-use activation and recovery tokens.
package verificationtokens

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository defines operations for issuing, looking up and consuming tokens.
type Repository interface {
	// Create stores a new token; CreatedAt is set by the repository.
	Create(ctx context.Context, token *models.VerificationToken) (*models.VerificationToken, error)

	// Find looks a token up by id. Absent tokens yield common.ErrorNotFound.
	Find(ctx context.Context, id string) (*models.VerificationToken, error)

	// Delete consumes a token. Deleting a token that no longer exists yields
	// common.ErrorNotFound, so a token can be consumed at most once.
	Delete(ctx context.Context, id string) error

	// DeleteByUser removes every outstanding token of userID and returns how many went.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
