package dialogues

import "context"

// Repo defines persistence operations for dialogues.
type Repo interface {
	Create(ctx context.Context, dialogue Dialogue) error
	GetByID(ctx context.Context, userID, dialogueID string) (Dialogue, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Dialogue, error)
	Update(ctx context.Context, dialogue Dialogue) error
	Delete(ctx context.Context, userID, dialogueID string) error
}
