package access

import (
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/plans"
)

func CapabilitiesFor(state AccessState, plan *plans.Plan) []string {
	// locked: nothing to edit
	if state == AccessLocked {
		return []string{}
	}

	// limited: basic builder only
	if state == AccessLimited {
		return []string{"builder", "templates"}
	}

	// trial
	if state == AccessTrial {
		return []string{"builder", "templates", "ai_chat", "export_pine"}
	}

	// full: tier-based
	switch plans.PlanTier(plan) {
	case plans.TierPro:
		return []string{"builder", "templates", "ai_chat", "export_pine"}
	case plans.TierPremium:
		return []string{"builder", "templates", "ai_chat", "export_pine", "premium_indicators", "priority_ai"}
	default:
		return []string{"builder", "templates"}
	}
}
