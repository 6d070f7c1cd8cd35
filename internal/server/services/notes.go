package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const maxNoteTitle = 200

// NoteService manages the notes of one authenticated account at a time.
type NoteService struct {
	repomanager repomanager.RepositoryManager
}

func NewNoteService(m repomanager.RepositoryManager) *NoteService {
	return &NoteService{repomanager: m}
}

func (s *NoteService) Add(ctx context.Context, accountID, title, content string) (*models.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" && strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: note is empty", common.ErrValidation)
	}
	if len(title) > maxNoteTitle {
		return nil, fmt.Errorf("%w: title longer than %d characters", common.ErrValidation, maxNoteTitle)
	}

	return s.repomanager.Repositories().Notes().Create(ctx, &models.Note{
		AccountID: accountID,
		Title:     title,
		Content:   content,
	})
}

func (s *NoteService) List(ctx context.Context, accountID string) ([]*models.Note, error) {
	return s.repomanager.Repositories().Notes().ListByAccount(ctx, accountID)
}

// Delete removes the account's note. Notes of other accounts are reported
// as not found.
func (s *NoteService) Delete(ctx context.Context, accountID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed note id", common.ErrValidation)
	}
	return s.repomanager.Repositories().Notes().Delete(ctx, accountID, id)
}
