package history

import "time"

// Message is one turn of a conversation.
type Message struct {
	ID        uint64    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
