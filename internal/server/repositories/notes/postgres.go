package notes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// PostgresRepository implements note storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Note) (*models.Note, error) {
	query := `
		INSERT INTO notes (user_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, n.AccountID, n.Title, n.Content).Scan(&n.ID, &n.CreatedAt); err != nil {
		return nil, fmt.Errorf("create note: %w", dbx.MapError(err))
	}
	return n, nil
}

// ListByAccount returns the account's notes, newest first.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Note, error) {
	query := `
		SELECT id, title, content, created_at FROM notes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("select notes: %w", dbx.MapError(err))
	}
	defer rows.Close()

	result := []*models.Note{}
	for rows.Next() {
		item := &models.Note{AccountID: accountID}
		if err := rows.Scan(&item.ID, &item.Title, &item.Content, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", dbx.MapError(err))
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select notes: %w", dbx.MapError(err))
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, accountID, id string) error {
	query := `
		DELETE FROM notes
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, accountID)
	if err != nil {
		return fmt.Errorf("delete note: %w", dbx.MapError(err))
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
