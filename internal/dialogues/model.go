package dialogues

import "time"

// Message is one turn in a saved dialogue.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	SentAt  string `json:"sentAt,omitempty"`
}

// Dialogue is a saved conversation session owned by a user.
type Dialogue struct {
	ID        string
	UserID    string
	Title     string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}
