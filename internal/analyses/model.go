package analyses

import "time"

// Analysis statuses. queued and processing are transient; the rest are
// terminal.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
)

// Analysis is a persisted analysis job owned by a user.
type Analysis struct {
	ID            string
	UserID        string
	DocumentID    string
	Topic         string
	Language      string
	Model         string
	Temperature   float64
	FileName      string
	FileSizeLabel string
	FileCharCount int
	Status        string
	Progress      int
	Result        map[string]any
	ErrorKind     string
	ErrorMessage  string
	CreatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

// IsTerminal reports whether the status admits no further transitions.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}
