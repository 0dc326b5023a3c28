package strategies

import (
	"encoding/json"
	"time"

	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/strategies"
)

type StrategyDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Graph       json.RawMessage `json:"graph"`
	PineScript  string          `json:"pine_script,omitempty"`
	Version     int             `json:"version"`
	IsPublic    bool            `json:"is_public"`
	ShareSlug   *string         `json:"share_slug,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type StrategyListItemDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	IsPublic  bool      `json:"is_public"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VersionDTO struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// TemplateDTO hides ownership internals; templates have no share slug.
type TemplateDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Graph       json.RawMessage `json:"graph"`
}

func toStrategyDTO(s *strategies.Strategy) StrategyDTO {
	return StrategyDTO{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Graph:       json.RawMessage(s.Graph),
		PineScript:  s.PineScript,
		Version:     s.Version,
		IsPublic:    s.IsPublic,
		ShareSlug:   s.ShareSlug,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toListItemDTO(s *strategies.Strategy) StrategyListItemDTO {
	return StrategyListItemDTO{
		ID:        s.ID,
		Name:      s.Name,
		Version:   s.Version,
		IsPublic:  s.IsPublic,
		UpdatedAt: s.UpdatedAt,
	}
}

func toTemplateDTO(s *strategies.Strategy) TemplateDTO {
	return TemplateDTO{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Graph:       json.RawMessage(s.Graph),
	}
}
