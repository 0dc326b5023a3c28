package tokens

import "time"

// Allocation reason tags. Reason doubles as the balance scope tag:
// subscription-included tokens and purchased credits live in the same
// table and are told apart by this convention.
const (
	ReasonSignupBonus          = "signup_bonus"
	ReasonSubscriptionGrant    = "subscription_grant"
	ReasonExtraCreditsPurchase = "extra_credits_purchase"
	ReasonAdminGrant           = "admin_grant"
)

// Usage request types.
const (
	RequestAIChat           = "ai_chat"
	RequestScriptGeneration = "script_generation"
)

// TokenAllocation is a granted batch of tokens. Rows are soft-deactivated,
// never deleted (audit trail).
type TokenAllocation struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index:idx_token_allocations_user_active,priority:1" json:"user_id"`
	TokenAmount int64  `gorm:"not null" json:"token_amount"`
	Reason      string `gorm:"type:varchar(64);not null;index" json:"reason"`
	IsActive    bool   `gorm:"not null;default:true;index:idx_token_allocations_user_active,priority:2" json:"is_active"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Admin user id when granted manually, nil for system grants.
	GrantedBy *uint `json:"granted_by,omitempty"`

	DeactivatedAt      *time.Time `json:"deactivated_at,omitempty"`
	DeactivationReason *string    `json:"deactivation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenUsageLog is an append-only record of token consumption.
// Rows are never mutated after creation.
type TokenUsageLog struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	TokensUsed  int64  `gorm:"not null" json:"tokens_used"`
	RequestType string `gorm:"type:varchar(64);not null;index" json:"request_type"`
	RequestID   string `gorm:"type:varchar(64)" json:"request_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
