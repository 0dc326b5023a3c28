package plans

import "strings"

// Tier constants (single source of truth)
const (
	TierFree    = "free"
	TierPro     = "pro"
	TierPremium = "premium"
)

// PlanTier returns the effective tier for a plan.
// Priority:
// 1. Explicit Tier stored in DB
// 2. Fallback inference by price (legacy safety net)
func PlanTier(p *Plan) string {
	if p == nil {
		return TierFree
	}

	tier := strings.ToLower(strings.TrimSpace(p.Tier))
	switch tier {
	case TierFree, TierPro, TierPremium:
		return tier
	}

	// Fallback (should disappear once all Stripe prices carry tier metadata)
	return inferTierFromPrice(p.PriceUSD)
}

// inferTierFromPrice exists ONLY as a backward-compatibility fallback.
// Do not rely on this long-term.
func inferTierFromPrice(priceUSD float64) string {
	switch {
	case priceUSD >= 49:
		return TierPremium
	case priceUSD >= 19:
		return TierPro
	default:
		return TierFree
	}
}

// TierTokenAllowance returns the monthly token allowance for a tier.
// Used when a plan has no monthly_tokens metadata in Stripe.
func TierTokenAllowance(tier string) int64 {
	switch tier {
	case TierPremium:
		return 2_000_000
	case TierPro:
		return 500_000
	default:
		return 10_000
	}
}

// PlanTokenAllowance returns the tokens a plan grants per period.
func PlanTokenAllowance(p *Plan) int64 {
	if p != nil && p.MonthlyTokens > 0 {
		return p.MonthlyTokens
	}
	return TierTokenAllowance(PlanTier(p))
}
