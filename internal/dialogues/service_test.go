package dialogues

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSaveAndGetDialogue(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	messages := []Message{
		{Role: "user", Content: "что такое фотосинтез?"},
		{Role: "assistant", Content: "процесс преобразования света в энергию"},
	}
	dialogue, err := svc.Save(context.Background(), "user-1", "Фотосинтез", messages)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if dialogue.ID == "" {
		t.Fatal("expected dialogue id")
	}

	got, err := svc.Get(context.Background(), "user-1", dialogue.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Messages) != 2 || got.Messages[1].Role != "assistant" {
		t.Fatalf("messages = %#v", got.Messages)
	}
}

func TestSaveDialogueValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, err := svc.Save(context.Background(), "", "title", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty user error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Save(context.Background(), "user-1", "  ", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty title error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Save(context.Background(), "user-1", strings.Repeat("ю", 201), nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("long title error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Save(context.Background(), "user-1", "title", []Message{{Role: " ", Content: "x"}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("roleless message error = %v, want ErrInvalidInput", err)
	}
}

func TestReplaceDialogue(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	dialogue, err := svc.Save(context.Background(), "user-1", "Черновик", []Message{{Role: "user", Content: "раз"}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	updated, err := svc.Replace(context.Background(), "user-1", dialogue.ID, "Итог", []Message{
		{Role: "user", Content: "раз"},
		{Role: "assistant", Content: "два"},
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if updated.Title != "Итог" || len(updated.Messages) != 2 {
		t.Fatalf("updated = %#v", updated)
	}
	if !updated.CreatedAt.Equal(dialogue.CreatedAt) {
		t.Fatal("Replace changed createdAt")
	}

	if _, err := svc.Replace(context.Background(), "user-1", "missing", "x", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Replace missing error = %v, want ErrNotFound", err)
	}
}

func TestDialogueOwnershipScoped(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	dialogue, err := svc.Save(context.Background(), "user-1", "приватный диалог", nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := svc.Get(context.Background(), "user-2", dialogue.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user Get error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), "user-2", dialogue.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user Delete error = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(context.Background(), "user-1", dialogue.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), "user-1", dialogue.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete error = %v, want ErrNotFound", err)
	}
}
