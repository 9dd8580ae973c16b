package analyses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateInsertsJobRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	analysis := Analysis{
		ID:            "analysis-1",
		UserID:        "user-1",
		DocumentID:    "doc-1",
		Topic:         "квантовая запутанность",
		Language:      "ru",
		Model:         "llama3.2:latest",
		Temperature:   0.7,
		FileName:      "notes.pdf",
		FileSizeLabel: "1.2 MB",
		FileCharCount: 5400,
		Status:        StatusQueued,
		CreatedAt:     time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs(
			analysis.ID,
			analysis.UserID,
			analysis.DocumentID,
			analysis.Topic,
			analysis.Language,
			analysis.Model,
			analysis.Temperature,
			analysis.FileName,
			analysis.FileSizeLabel,
			analysis.FileCharCount,
			analysis.Status,
			0,
			analysis.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), analysis); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDMapsMissingRowToNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT (.+) FROM analyses").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDScansResultAndTimestamps(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	started := created.Add(time.Second)
	completed := created.Add(5 * time.Second)

	columns := []string{
		"id", "user_id", "document_id", "topic", "language", "model", "temperature",
		"file_name", "file_size_label", "file_char_count",
		"status", "progress", "result", "error_kind", "error_message",
		"created_at", "started_at", "completed_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM analyses").
		WithArgs("analysis-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"analysis-1", "user-1", nil, "фотосинтез", "ru", "llama3.2:latest", 0.7,
			nil, nil, nil,
			StatusCompleted, 100, []byte(`{"summary":"ok"}`), nil, nil,
			created, started, completed,
		))

	a, err := repo.GetByID(context.Background(), "analysis-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if a.Status != StatusCompleted || a.Progress != 100 {
		t.Fatalf("status/progress = %s/%d", a.Status, a.Progress)
	}
	if a.Result["summary"] != "ok" {
		t.Fatalf("result = %#v", a.Result)
	}
	if a.StartedAt == nil || !a.StartedAt.Equal(started) {
		t.Fatalf("startedAt = %v", a.StartedAt)
	}
	if a.CompletedAt == nil || !a.CompletedAt.Equal(completed) {
		t.Fatalf("completedAt = %v", a.CompletedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateProgressOnlyTouchesProcessingRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE analyses").
		WithArgs(45, "analysis-1", StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateProgress(context.Background(), "analysis-1", 45); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoMarkTerminalSkipsTerminalRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	completedAt := time.Now().UTC()

	mock.ExpectExec("UPDATE analyses").
		WithArgs(
			StatusCompleted,
			sqlmock.AnyArg(), // result json
			nil,
			nil,
			completedAt,
			100, // completed rows jump to full progress
			"analysis-1",
			StatusCompleted,
			StatusFailed,
			StatusCanceled,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkTerminal(context.Background(), "analysis-1", StatusCompleted,
		map[string]any{"summary": "ok"}, "", "", completedAt)
	if err != nil {
		t.Fatalf("MarkTerminal: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
