package models

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single turn inside a conversation. Messages are immutable
// once written; there is no update path. CreatedAt is epoch milliseconds.
type Message struct {
	ID             int64  `json:"id"`
	ConversationID int64  `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	DeepThinking   string `json:"deep_thinking,omitempty"`
	Model          string `json:"model,omitempty"`
	CreatedAt      int64  `json:"created_at"`
}
