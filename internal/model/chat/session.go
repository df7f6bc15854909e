package chat

import "time"

// Session captures a transient anonymous conversation, one per page load.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
