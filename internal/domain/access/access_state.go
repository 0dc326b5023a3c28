package access

import (
	"time"

	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/plans"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/infra/stripe"
)

// Effective access for UI/product: trial|full|limited|locked
func ComputeEffectiveAccessState(now time.Time, u users.User) AccessState {
	// Active trial
	if u.TrialEndAt != nil && now.Before(*u.TrialEndAt) {
		return AccessTrial
	}

	// No subscription at all: free tier still gets the limited builder
	if u.SubscriptionId == nil || *u.SubscriptionId == "" {
		return AccessLimited
	}

	// Subscription exists -> interpret Stripe status
	switch stripe.NormalizeStripeStatus(u.StripeSubscriptionStatus) {
	case "active", "trialing":
		switch plans.PlanTier(u.Plan) {
		case plans.TierPro, plans.TierPremium:
			return AccessFull
		default:
			return AccessLimited
		}

	case "past_due":
		return AccessLimited

	case "canceled":
		// Paid-through access until the period end
		if u.CurrentPeriodEnd != nil && now.Before(*u.CurrentPeriodEnd) {
			switch plans.PlanTier(u.Plan) {
			case plans.TierPro, plans.TierPremium:
				return AccessFull
			default:
				return AccessLimited
			}
		}
		return AccessLocked

	default:
		return AccessLocked
	}
}
