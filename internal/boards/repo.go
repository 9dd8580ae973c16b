package boards

import "context"

// Repo defines persistence operations for boards.
type Repo interface {
	Create(ctx context.Context, board Board) error
	GetByID(ctx context.Context, userID, boardID string) (Board, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Board, error)
	UpdateTitle(ctx context.Context, userID, boardID, title string) error
	Delete(ctx context.Context, userID, boardID string) error
}
