package analyses

import (
	"context"
	"time"
)

// Repo defines persistence operations for analysis jobs.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error)
	MarkProcessing(ctx context.Context, analysisID string, startedAt time.Time) error
	UpdateProgress(ctx context.Context, analysisID string, progress int) error
	MarkTerminal(ctx context.Context, analysisID, status string, result map[string]any, errorKind, errorMessage string, completedAt time.Time) error
}
