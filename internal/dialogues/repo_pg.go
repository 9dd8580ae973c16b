package dialogues

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new dialogue.
func (r *PGRepo) Create(ctx context.Context, dialogue Dialogue) error {
	messagesJSON, err := json.Marshal(dialogue.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}

	const query = `
INSERT INTO dialogues (id, user_id, title, messages, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.DB.ExecContext(
		ctx,
		query,
		dialogue.ID,
		dialogue.UserID,
		dialogue.Title,
		messagesJSON,
		dialogue.CreatedAt,
		dialogue.UpdatedAt,
	)
	return err
}

// GetByID fetches a dialogue scoped to its owner.
func (r *PGRepo) GetByID(ctx context.Context, userID, dialogueID string) (Dialogue, error) {
	const query = `
SELECT id, user_id, title, messages, created_at, updated_at
FROM dialogues
WHERE user_id = $1 AND id = $2
LIMIT 1`
	dialogue, err := scanDialogue(r.DB.QueryRowContext(ctx, query, userID, dialogueID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Dialogue{}, ErrNotFound
		}
		return Dialogue{}, err
	}
	return dialogue, nil
}

// ListByUser lists a user's dialogues, most recently updated first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Dialogue, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, title, messages, created_at, updated_at
FROM dialogues
WHERE user_id = $1
ORDER BY updated_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dialogue
	for rows.Next() {
		dialogue, err := scanDialogue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dialogue)
	}
	return out, rows.Err()
}

// Update replaces a dialogue's title and message list.
func (r *PGRepo) Update(ctx context.Context, dialogue Dialogue) error {
	messagesJSON, err := json.Marshal(dialogue.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}

	const query = `
UPDATE dialogues
SET title = $1, messages = $2, updated_at = $3
WHERE user_id = $4 AND id = $5`
	res, err := r.DB.ExecContext(ctx, query, dialogue.Title, messagesJSON, dialogue.UpdatedAt, dialogue.UserID, dialogue.ID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a dialogue.
func (r *PGRepo) Delete(ctx context.Context, userID, dialogueID string) error {
	const query = `DELETE FROM dialogues WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, dialogueID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDialogue(row rowScanner) (Dialogue, error) {
	var dialogue Dialogue
	var messagesRaw []byte

	err := row.Scan(
		&dialogue.ID,
		&dialogue.UserID,
		&dialogue.Title,
		&messagesRaw,
		&dialogue.CreatedAt,
		&dialogue.UpdatedAt,
	)
	if err != nil {
		return Dialogue{}, err
	}

	if len(messagesRaw) > 0 {
		if err := json.Unmarshal(messagesRaw, &dialogue.Messages); err != nil {
			return Dialogue{}, fmt.Errorf("unmarshal messages: %w", err)
		}
	}
	return dialogue, nil
}

var _ Repo = (*PGRepo)(nil)
