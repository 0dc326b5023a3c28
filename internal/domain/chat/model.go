package chat

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Conversation struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Title  string `json:"title"`

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE;" json:"messages,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID string `gorm:"type:uuid;not null;index" json:"conversation_id"`
	Role           string `gorm:"type:varchar(20);not null" json:"role"`
	Content        string `gorm:"type:text;not null" json:"content"`

	// Tokens billed against the ledger for this exchange.
	// Set on assistant messages only.
	TokensUsed int64 `gorm:"not null;default:0" json:"tokens_used"`

	CreatedAt time.Time `json:"created_at"`
}
