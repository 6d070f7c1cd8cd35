package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// PostgresRepository implements session storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, tokenHash []byte, s *models.Session) error {
	query := `
		INSERT INTO sessions (token_hash, user_id, authenticated, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, tokenHash, s.AccountID, s.Authenticated, s.CreatedAt, s.ExpiresAt); err != nil {
		return fmt.Errorf("create session: %w", dbx.MapError(err))
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, tokenHash []byte) (*models.Session, error) {
	query := `
		SELECT user_id, authenticated, created_at, expires_at
		FROM sessions
		WHERE token_hash = $1
	`
	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(&s.AccountID, &s.Authenticated, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", dbx.MapError(err))
	}
	return s, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, tokenHash []byte) error {
	query := `
		DELETE FROM sessions
		WHERE token_hash = $1
	`
	if _, err := r.db.ExecContext(ctx, query, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", dbx.MapError(err))
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", dbx.MapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", dbx.MapError(err))
	}
	return n, nil
}
