package boards

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxTitleLength = 200

// Service contains business logic for boards.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Save pins an insight result to a new board.
func (s *Service) Save(ctx context.Context, userID, title, analysisID string, result map[string]any) (Board, error) {
	title = strings.TrimSpace(title)
	if strings.TrimSpace(userID) == "" {
		return Board{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if title == "" {
		return Board{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len([]rune(title)) > maxTitleLength {
		return Board{}, fmt.Errorf("%w: title is too long", ErrInvalidInput)
	}
	if len(result) == 0 {
		return Board{}, fmt.Errorf("%w: result is required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	board := Board{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      title,
		AnalysisID: analysisID,
		Result:     result,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, board); err != nil {
		return Board{}, err
	}
	return board, nil
}

// Get fetches a single board scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, boardID string) (Board, error) {
	return s.Repo.GetByID(ctx, userID, boardID)
}

// List returns a user's boards newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Board, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Rename changes a board title.
func (s *Service) Rename(ctx context.Context, userID, boardID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len([]rune(title)) > maxTitleLength {
		return fmt.Errorf("%w: title is too long", ErrInvalidInput)
	}
	return s.Repo.UpdateTitle(ctx, userID, boardID, title)
}

// Delete removes a board.
func (s *Service) Delete(ctx context.Context, userID, boardID string) error {
	return s.Repo.Delete(ctx, userID, boardID)
}
