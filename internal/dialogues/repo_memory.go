package dialogues

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo implements Repo in memory, used when DATABASE_URL is unset.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Dialogue
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Dialogue)}
}

func (r *MemoryRepo) Create(ctx context.Context, dialogue Dialogue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[dialogue.ID] = dialogue
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, dialogueID string) (Dialogue, error) {
	if err := ctx.Err(); err != nil {
		return Dialogue{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	dialogue, ok := r.items[dialogueID]
	if !ok || dialogue.UserID != userID {
		return Dialogue{}, ErrNotFound
	}
	return dialogue, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Dialogue, error) {
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
	var all []Dialogue
	for _, dialogue := range r.items {
		if dialogue.UserID == userID {
			all = append(all, dialogue)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
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

func (r *MemoryRepo) Update(ctx context.Context, dialogue Dialogue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[dialogue.ID]
	if !ok || existing.UserID != dialogue.UserID {
		return ErrNotFound
	}
	dialogue.CreatedAt = existing.CreatedAt
	r.items[dialogue.ID] = dialogue
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, dialogueID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	dialogue, ok := r.items[dialogueID]
	if !ok || dialogue.UserID != userID {
		return ErrNotFound
	}
	delete(r.items, dialogueID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
