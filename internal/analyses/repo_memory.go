package analyses

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo implements Repo in memory, used when DATABASE_URL is unset.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Analysis
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Analysis)}
}

func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[analysis.ID] = analysis
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	var all []Analysis
	for _, a := range r.items {
		if a.UserID == userID {
			all = append(all, a)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *MemoryRepo) MarkProcessing(ctx context.Context, analysisID string, startedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[analysisID]
	if !ok {
		return ErrNotFound
	}
	if IsTerminal(a.Status) {
		return nil
	}
	a.Status = StatusProcessing
	a.StartedAt = &startedAt
	r.items[analysisID] = a
	return nil
}

func (r *MemoryRepo) UpdateProgress(ctx context.Context, analysisID string, progress int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[analysisID]
	if !ok {
		return ErrNotFound
	}
	if IsTerminal(a.Status) {
		return nil
	}
	a.Progress = progress
	r.items[analysisID] = a
	return nil
}

func (r *MemoryRepo) MarkTerminal(ctx context.Context, analysisID, status string, result map[string]any, errorKind, errorMessage string, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[analysisID]
	if !ok {
		return ErrNotFound
	}
	if IsTerminal(a.Status) {
		return nil
	}
	a.Status = status
	a.Result = result
	a.ErrorKind = errorKind
	a.ErrorMessage = errorMessage
	a.CompletedAt = &completedAt
	if status == StatusCompleted {
		a.Progress = 100
	}
	r.items[analysisID] = a
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
