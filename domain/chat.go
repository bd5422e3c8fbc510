package domain

import "time"

// Chat is the chat record snapshot carried inside mutation notifications.
// The JSON tags follow the row_to_json output of the chat store's triggers.
// Only Members is read by the engine; the other fields travel through
// untouched so clients receive the full snapshot.
type Chat struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"ws_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Members     []UserID  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
}
