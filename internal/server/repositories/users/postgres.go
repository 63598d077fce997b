package users

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

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, given_name, maiden_name, email_address, password_hash, is_activated, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.GivenName, user.MaidenName, user.EmailAddress, user.PasswordHash,
		user.IsActivated, user.CreatedAt, user.UpdatedAt)

	if err != nil {
		// under serializable isolation a concurrent insert of the same
		// address may surface as a serialization failure instead
		if dbx.IsUniqueViolation(err) || dbx.IsSerializationFailure(err) {
			return nil, common.ErrorConflict
		}
		return nil, common.Persistence(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, given_name, maiden_name, email_address, password_hash, is_activated, created_at, updated_at FROM users
		 WHERE lower(email_address) = lower($1)
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.GivenName, &user.MaidenName, &user.EmailAddress,
		&user.PasswordHash, &user.IsActivated, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, common.Persistence(err)
	}

	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users SET given_name = $2, maiden_name = $3, password_hash = $4, is_activated = $5, updated_at = $6
		 WHERE id = $1
		 `

	updatedAt := time.Now().UTC()

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.GivenName, user.MaidenName, user.PasswordHash, user.IsActivated, updatedAt)
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

	user.UpdatedAt = updatedAt
	return nil
}
