package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanTier(t *testing.T) {
	assert.Equal(t, TierFree, PlanTier(nil))

	assert.Equal(t, TierPro, PlanTier(&Plan{Tier: "pro"}))
	assert.Equal(t, TierPremium, PlanTier(&Plan{Tier: " Premium "}))
	assert.Equal(t, TierFree, PlanTier(&Plan{Tier: "free", PriceUSD: 99}))

	// no stored tier: infer from price
	assert.Equal(t, TierPremium, PlanTier(&Plan{PriceUSD: 49}))
	assert.Equal(t, TierPro, PlanTier(&Plan{PriceUSD: 19}))
	assert.Equal(t, TierFree, PlanTier(&Plan{PriceUSD: 0}))
	assert.Equal(t, TierFree, PlanTier(&Plan{Tier: "enterprise", PriceUSD: 9}))
}

func TestTierTokenAllowance(t *testing.T) {
	assert.Equal(t, int64(2_000_000), TierTokenAllowance(TierPremium))
	assert.Equal(t, int64(500_000), TierTokenAllowance(TierPro))
	assert.Equal(t, int64(10_000), TierTokenAllowance(TierFree))
	assert.Equal(t, int64(10_000), TierTokenAllowance("unknown"))
}

func TestPlanTokenAllowance(t *testing.T) {
	// explicit metadata wins
	assert.Equal(t, int64(750_000), PlanTokenAllowance(&Plan{Tier: "pro", MonthlyTokens: 750_000}))

	// fallback to tier defaults
	assert.Equal(t, int64(500_000), PlanTokenAllowance(&Plan{Tier: "pro"}))
	assert.Equal(t, int64(10_000), PlanTokenAllowance(nil))
}
