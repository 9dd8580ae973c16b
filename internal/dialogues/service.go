package dialogues

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxTitleLength = 200
	maxMessages    = 500
)

// Service contains business logic for saved dialogues.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func validate(userID, title string, messages []Message) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len([]rune(title)) > maxTitleLength {
		return fmt.Errorf("%w: title is too long", ErrInvalidInput)
	}
	if len(messages) > maxMessages {
		return fmt.Errorf("%w: too many messages", ErrInvalidInput)
	}
	for i, msg := range messages {
		if strings.TrimSpace(msg.Role) == "" {
			return fmt.Errorf("%w: message %d has no role", ErrInvalidInput, i)
		}
	}
	return nil
}

// Save stores a new dialogue session.
func (s *Service) Save(ctx context.Context, userID, title string, messages []Message) (Dialogue, error) {
	title = strings.TrimSpace(title)
	if err := validate(userID, title, messages); err != nil {
		return Dialogue{}, err
	}
	if messages == nil {
		messages = []Message{}
	}

	now := time.Now().UTC()
	dialogue := Dialogue{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Messages:  messages,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, dialogue); err != nil {
		return Dialogue{}, err
	}
	return dialogue, nil
}

// Get fetches a single dialogue scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, dialogueID string) (Dialogue, error) {
	return s.Repo.GetByID(ctx, userID, dialogueID)
}

// List returns a user's dialogues, most recently updated first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Dialogue, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Replace overwrites a dialogue's title and message list.
func (s *Service) Replace(ctx context.Context, userID, dialogueID, title string, messages []Message) (Dialogue, error) {
	title = strings.TrimSpace(title)
	if err := validate(userID, title, messages); err != nil {
		return Dialogue{}, err
	}
	if messages == nil {
		messages = []Message{}
	}

	dialogue := Dialogue{
		ID:        dialogueID,
		UserID:    userID,
		Title:     title,
		Messages:  messages,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Update(ctx, dialogue); err != nil {
		return Dialogue{}, err
	}
	return s.Repo.GetByID(ctx, userID, dialogueID)
}

// Delete removes a dialogue.
func (s *Service) Delete(ctx context.Context, userID, dialogueID string) error {
	return s.Repo.Delete(ctx, userID, dialogueID)
}
