package boards

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo implements Repo in memory, used when DATABASE_URL is unset.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Board
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Board)}
}

func (r *MemoryRepo) Create(ctx context.Context, board Board) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[board.ID] = board
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, boardID string) (Board, error) {
	if err := ctx.Err(); err != nil {
		return Board{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	board, ok := r.items[boardID]
	if !ok || board.UserID != userID {
		return Board{}, ErrNotFound
	}
	return board, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Board, error) {
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
	var all []Board
	for _, board := range r.items {
		if board.UserID == userID {
			all = append(all, board)
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

func (r *MemoryRepo) UpdateTitle(ctx context.Context, userID, boardID, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	board, ok := r.items[boardID]
	if !ok || board.UserID != userID {
		return ErrNotFound
	}
	board.Title = title
	board.UpdatedAt = time.Now().UTC()
	r.items[boardID] = board
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, boardID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	board, ok := r.items[boardID]
	if !ok || board.UserID != userID {
		return ErrNotFound
	}
	delete(r.items, boardID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
