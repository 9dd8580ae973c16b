package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"insight-backend/internal/extract"
	"insight-backend/internal/shared/storage/object"
)

// Service contains business logic for documents.
type Service struct {
	Store           object.ObjectStore
	Repo            DocumentsRepo
	StorageProvider string
}

// Extraction is the extracted-text view of a document handed to analysis.
type Extraction struct {
	DocumentID string
	FileName   string
	SizeLabel  string
	CharCount  int
	Text       string
}

// Upload saves the file to object storage and records the document.
func (s *Service) Upload(ctx context.Context, userId, fileName string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userId, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:              uuid.NewString(),
		UserID:          userId,
		FileName:        fileName,
		MimeType:        mimeType,
		SizeBytes:       size,
		StorageProvider: s.StorageProvider,
		StorageKey:      storageKey,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return doc, nil
}

// Current returns the current document for a user.
func (s *Service) Current(ctx context.Context, userId string) (Document, error) {
	if userId == "" {
		return Document{}, errors.New("user id required")
	}
	return s.Repo.GetCurrentByUser(ctx, userId)
}

// GetByID returns a document by ID scoped to its owner.
func (s *Service) GetByID(ctx context.Context, userId, documentID string) (Document, error) {
	if userId == "" {
		return Document{}, errors.New("user id required")
	}
	return s.Repo.GetByID(ctx, userId, documentID)
}

// List returns a user's documents, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if userId == "" {
		return nil, errors.New("user id required")
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// ExtractedText returns the text content of a document, extracting and
// caching it on first use. The derived object lives next to the original
// under a .extracted.txt key.
func (s *Service) ExtractedText(ctx context.Context, userId, documentID string) (Extraction, error) {
	doc, err := s.Repo.GetByID(ctx, userId, documentID)
	if err != nil {
		return Extraction{}, err
	}

	var text string
	if doc.ExtractedTextKey != "" {
		body, err := s.Store.Open(ctx, doc.ExtractedTextKey)
		if err != nil {
			return Extraction{}, fmt.Errorf("open extracted text: %w", err)
		}
		defer body.Close()
		raw, err := io.ReadAll(body)
		if err != nil {
			return Extraction{}, fmt.Errorf("read extracted text: %w", err)
		}
		text = string(raw)
	} else {
		text, err = extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
		if err != nil {
			return Extraction{}, fmt.Errorf("%w: %s", ErrNotExtracted, err)
		}
		charCount := utf8.RuneCountInString(text)
		extractedKey := doc.StorageKey + ".extracted.txt"
		if err := s.Repo.UpdateExtraction(ctx, userId, documentID, extractedKey, charCount, time.Now().UTC()); err != nil {
			return Extraction{}, err
		}
		doc.CharCount = charCount
	}

	if doc.CharCount == 0 {
		doc.CharCount = utf8.RuneCountInString(text)
	}

	return Extraction{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		SizeLabel:  sizeLabel(doc.SizeBytes),
		CharCount:  doc.CharCount,
		Text:       text,
	}, nil
}

// sizeLabel renders a human-readable size for prompt context.
func sizeLabel(sizeBytes int64) string {
	switch {
	case sizeBytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(sizeBytes)/float64(1<<20))
	case sizeBytes >= 1<<10:
		return fmt.Sprintf("%.0f KB", float64(sizeBytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", sizeBytes)
	}
}
