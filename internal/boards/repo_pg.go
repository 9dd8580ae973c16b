package boards

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new board.
func (r *PGRepo) Create(ctx context.Context, board Board) error {
	resultJSON, err := json.Marshal(board.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	const query = `
INSERT INTO boards (id, user_id, title, analysis_id, result, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	var analysisID sql.NullString
	if board.AnalysisID != "" {
		analysisID = sql.NullString{String: board.AnalysisID, Valid: true}
	}
	_, err = r.DB.ExecContext(
		ctx,
		query,
		board.ID,
		board.UserID,
		board.Title,
		analysisID,
		resultJSON,
		board.CreatedAt,
		board.UpdatedAt,
	)
	return err
}

// GetByID fetches a board scoped to its owner.
func (r *PGRepo) GetByID(ctx context.Context, userID, boardID string) (Board, error) {
	const query = `
SELECT id, user_id, title, analysis_id, result, created_at, updated_at
FROM boards
WHERE user_id = $1 AND id = $2
LIMIT 1`
	board, err := scanBoard(r.DB.QueryRowContext(ctx, query, userID, boardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Board{}, ErrNotFound
		}
		return Board{}, err
	}
	return board, nil
}

// ListByUser lists a user's boards newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Board, error) {
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
SELECT id, user_id, title, analysis_id, result, created_at, updated_at
FROM boards
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Board
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, board)
	}
	return out, rows.Err()
}

// UpdateTitle renames a board.
func (r *PGRepo) UpdateTitle(ctx context.Context, userID, boardID, title string) error {
	const query = `
UPDATE boards
SET title = $1, updated_at = $2
WHERE user_id = $3 AND id = $4`
	res, err := r.DB.ExecContext(ctx, query, title, time.Now().UTC(), userID, boardID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a board.
func (r *PGRepo) Delete(ctx context.Context, userID, boardID string) error {
	const query = `DELETE FROM boards WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, boardID)
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

func scanBoard(row rowScanner) (Board, error) {
	var board Board
	var analysisID sql.NullString
	var resultRaw []byte

	err := row.Scan(
		&board.ID,
		&board.UserID,
		&board.Title,
		&analysisID,
		&resultRaw,
		&board.CreatedAt,
		&board.UpdatedAt,
	)
	if err != nil {
		return Board{}, err
	}

	board.AnalysisID = analysisID.String
	if len(resultRaw) > 0 {
		if err := json.Unmarshal(resultRaw, &board.Result); err != nil {
			return Board{}, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return board, nil
}

var _ Repo = (*PGRepo)(nil)
