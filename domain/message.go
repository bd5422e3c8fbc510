package domain

import "time"

// Message is an immutable chat message record, opaque to the engine aside
// from identity. Shape mirrors the messages table row serialized by the
// chat store's notification trigger.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	SenderID  UserID    `json:"sender_id"`
	Content   string    `json:"content"`
	Files     []string  `json:"files,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
