// Package verificationtokens provides a PostgreSQL-backed repository for the
// tokens that authorize account activation and password recovery.
package verificationtokens

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts token for its owning user.
func (r *PostgresRepository) Create(ctx context.Context, token *models.VerificationToken) (*models.VerificationToken, error) {
	query := `
		INSERT INTO verification_tokens (id, user_id, created_at)
		VALUES ($1, $2, $3)
	`
	token.CreatedAt = time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, token.ID, token.UserID, token.CreatedAt); err != nil {
		return nil, common.Persistence(err)
	}
	return token, nil
}

// Find returns the token row for the given id.
func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.VerificationToken, error) {
	query := `
		SELECT id, user_id, created_at
		FROM verification_tokens
		WHERE id = $1
	`
	token := &models.VerificationToken{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&token.ID, &token.UserID, &token.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, common.Persistence(err)
	}
	return token, nil
}

// Delete removes a token by id; zero affected rows means it was already consumed.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM verification_tokens
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return common.Persistence(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return common.Persistence(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteByUser removes all tokens owned by userID.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	query := `
		DELETE FROM verification_tokens
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, common.Persistence(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.Persistence(err)
	}
	return n, nil
}
