package analyses

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

// Create inserts a new analysis job.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
    id,
    user_id,
    document_id,
    topic,
    language,
    model,
    temperature,
    file_name,
    file_size_label,
    file_char_count,
    status,
    progress,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		analysis.ID,
		analysis.UserID,
		nullString(analysis.DocumentID),
		analysis.Topic,
		nullString(analysis.Language),
		nullString(analysis.Model),
		analysis.Temperature,
		nullString(analysis.FileName),
		nullString(analysis.FileSizeLabel),
		analysis.FileCharCount,
		analysis.Status,
		analysis.Progress,
		analysis.CreatedAt,
	)
	return err
}

// GetByID fetches a single analysis job.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	const query = `
SELECT id, user_id, document_id, topic, language, model, temperature,
       file_name, file_size_label, file_char_count,
       status, progress, result, error_kind, error_message,
       created_at, started_at, completed_at
FROM analyses
WHERE id = $1
LIMIT 1`

	row := r.DB.QueryRowContext(ctx, query, analysisID)
	a, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// ListByUser lists a user's analyses newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
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
SELECT id, user_id, document_id, topic, language, model, temperature,
       file_name, file_size_label, file_char_count,
       status, progress, result, error_kind, error_message,
       created_at, started_at, completed_at
FROM analyses
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MarkProcessing transitions a queued analysis to processing.
func (r *PGRepo) MarkProcessing(ctx context.Context, analysisID string, startedAt time.Time) error {
	const query = `
UPDATE analyses
SET status = $1, started_at = $2
WHERE id = $3 AND status = $4`
	_, err := r.DB.ExecContext(ctx, query, StatusProcessing, startedAt, analysisID, StatusQueued)
	return err
}

// UpdateProgress stores the simulated progress value for a running analysis.
func (r *PGRepo) UpdateProgress(ctx context.Context, analysisID string, progress int) error {
	const query = `
UPDATE analyses
SET progress = $1
WHERE id = $2 AND status = $3`
	_, err := r.DB.ExecContext(ctx, query, progress, analysisID, StatusProcessing)
	return err
}

// MarkTerminal writes the final status of an analysis. Already-terminal rows
// are left untouched.
func (r *PGRepo) MarkTerminal(ctx context.Context, analysisID, status string, result map[string]any, errorKind, errorMessage string, completedAt time.Time) error {
	var resultJSON any
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		resultJSON = data
	}

	progress := sql.NullInt64{}
	if status == StatusCompleted {
		progress = sql.NullInt64{Int64: 100, Valid: true}
	}

	const query = `
UPDATE analyses
SET status = $1,
    result = $2,
    error_kind = $3,
    error_message = $4,
    completed_at = $5,
    progress = COALESCE($6, progress)
WHERE id = $7 AND status NOT IN ($8, $9, $10)`
	_, err := r.DB.ExecContext(
		ctx,
		query,
		status,
		resultJSON,
		nullString(errorKind),
		nullString(errorMessage),
		completedAt,
		progress,
		analysisID,
		StatusCompleted,
		StatusFailed,
		StatusCanceled,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var documentID, language, model, fileName, fileSizeLabel sql.NullString
	var fileCharCount sql.NullInt64
	var temperature sql.NullFloat64
	var resultRaw []byte
	var errorKind, errorMessage sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&documentID,
		&a.Topic,
		&language,
		&model,
		&temperature,
		&fileName,
		&fileSizeLabel,
		&fileCharCount,
		&a.Status,
		&a.Progress,
		&resultRaw,
		&errorKind,
		&errorMessage,
		&a.CreatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return Analysis{}, err
	}

	a.DocumentID = documentID.String
	a.Language = language.String
	a.Model = model.String
	a.Temperature = temperature.Float64
	a.FileName = fileName.String
	a.FileSizeLabel = fileSizeLabel.String
	a.FileCharCount = int(fileCharCount.Int64)
	a.ErrorKind = errorKind.String
	a.ErrorMessage = errorMessage.String
	if len(resultRaw) > 0 {
		if err := json.Unmarshal(resultRaw, &a.Result); err != nil {
			return Analysis{}, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	if startedAt.Valid {
		a.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return a, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
