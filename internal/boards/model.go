package boards

import "time"

// Board is a saved insight pinned by a user to their dashboard.
type Board struct {
	ID         string
	UserID     string
	Title      string
	AnalysisID string
	Result     map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
