package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, first_name, middle_name, last_name, username, email, password_hash, asset_key, created_at`

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO users (first_name, middle_name, last_name, username, email, password_hash, asset_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		a.FirstName, a.MiddleName, a.LastName, a.UserName, a.Email, a.PasswordHash, a.AssetKey,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", dbx.MapError(err))
	}

	return a, nil
}

// GetByLogin matches login against the username or, case-insensitively, the email.
func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users
		 WHERE username = $1 OR email = lower($1)
		 LIMIT 1
		 `
	return r.getOne(ctx, query, login)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users
		 WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.FirstName, &a.MiddleName, &a.LastName, &a.UserName, &a.Email,
		&a.PasswordHash, &a.AssetKey, &a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", dbx.MapError(err))
	}
	return a, nil
}

func (r *PostgresRepository) LockAssetKey(ctx context.Context, id string) (string, error) {
	query :=
		`SELECT asset_key FROM users
		 WHERE id = $1
		 FOR UPDATE
		 `

	var key string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&key); err != nil {
		return "", fmt.Errorf("lock asset key: %w", dbx.MapError(err))
	}
	return key, nil
}

func (r *PostgresRepository) SetAssetKey(ctx context.Context, id, key string) error {
	query :=
		`UPDATE users SET asset_key = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("set asset key: %w", dbx.MapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", dbx.MapError(err))
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
