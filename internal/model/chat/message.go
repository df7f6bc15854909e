package chat

import "time"

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a single conversation turn. The transcript is append-only:
// once a message is appended it is never mutated or removed.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Category  Category  `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
