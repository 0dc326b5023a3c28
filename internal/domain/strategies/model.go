package strategies

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	OwnerUser   = "user"
	OwnerSystem = "system"
)

// Strategy is a visual-editor trading strategy. System-owned rows are the
// built-in templates users can copy.
type Strategy struct {
	// IDs come from the BeforeCreate hook, not a column default, so the
	// model works on every dialect the tests use.
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	OwnerType string `gorm:"type:text;not null;default:'user';index" json:"-"`
	UserID    *uint  `gorm:"index" json:"-"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`

	// Node/connection graph as drawn in the editor.
	Graph datatypes.JSON `gorm:"type:jsonb" json:"graph"`

	// Last generated Pine Script source, empty until first generation.
	PineScript string `gorm:"type:text" json:"pine_script,omitempty"`

	Version int `gorm:"not null;default:0" json:"version"`

	IsPublic  bool    `gorm:"not null;default:false" json:"is_public"`
	ShareSlug *string `gorm:"uniqueIndex:idx_strategies_share_slug" json:"share_slug,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Strategy) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// StrategyVersion is an immutable snapshot taken on every save that bumps
// the version counter. Never mutated after creation.
type StrategyVersion struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	StrategyID string `gorm:"type:uuid;not null;index:idx_strategy_versions_strategy,priority:1" json:"strategy_id"`
	Version    int    `gorm:"not null;index:idx_strategy_versions_strategy,priority:2" json:"version"`

	Graph      datatypes.JSON `gorm:"type:jsonb" json:"graph"`
	PineScript string         `gorm:"type:text" json:"pine_script,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (v *StrategyVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
