package models

// Conversation statuses. Only "active" is produced today; the column
// exists so archiving can be added without a migration.
const (
	StatusActive = "active"
)

// Conversation is a chat session. Timestamps are epoch milliseconds,
// matching what clients send and receive on the sync endpoint.
type Conversation struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	FirstUserMessage string `json:"first_user_message,omitempty"`
	Status           string `json:"status"`
	Pinned           bool   `json:"pinned"`
	CreatedAt        int64  `json:"created_at"`
	UpdatedAt        int64  `json:"updated_at"`
}
