package access

import (
	"testing"
	"time"

	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/plans"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestComputeEffectiveAccessState(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(72 * time.Hour)
	past := now.Add(-72 * time.Hour)

	pro := &plans.Plan{Tier: plans.TierPro, PriceUSD: 19}
	freePlan := &plans.Plan{Tier: plans.TierFree}

	cases := []struct {
		name string
		user users.User
		want AccessState
	}{
		{
			"active trial",
			users.User{TrialEndAt: &future},
			AccessTrial,
		},
		{
			"expired trial, no subscription",
			users.User{TrialEndAt: &past},
			AccessLimited,
		},
		{
			"no subscription at all",
			users.User{},
			AccessLimited,
		},
		{
			"active pro subscription",
			users.User{SubscriptionId: strPtr("sub_1"), StripeSubscriptionStatus: strPtr("active"), Plan: pro},
			AccessFull,
		},
		{
			"active subscription on free plan",
			users.User{SubscriptionId: strPtr("sub_2"), StripeSubscriptionStatus: strPtr("active"), Plan: freePlan},
			AccessLimited,
		},
		{
			"past due",
			users.User{SubscriptionId: strPtr("sub_3"), StripeSubscriptionStatus: strPtr("past_due"), Plan: pro},
			AccessLimited,
		},
		{
			"canceled but paid through",
			users.User{SubscriptionId: strPtr("sub_4"), StripeSubscriptionStatus: strPtr("canceled"), Plan: pro, CurrentPeriodEnd: &future},
			AccessFull,
		},
		{
			"canceled past period end",
			users.User{SubscriptionId: strPtr("sub_5"), StripeSubscriptionStatus: strPtr("canceled"), Plan: pro, CurrentPeriodEnd: &past},
			AccessLocked,
		},
		{
			"unknown status",
			users.User{SubscriptionId: strPtr("sub_6"), StripeSubscriptionStatus: strPtr("incomplete"), Plan: pro},
			AccessLocked,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeEffectiveAccessState(now, tc.user))
		})
	}
}

func TestCapabilitiesFor(t *testing.T) {
	pro := &plans.Plan{Tier: plans.TierPro}
	premium := &plans.Plan{Tier: plans.TierPremium}

	assert.Empty(t, CapabilitiesFor(AccessLocked, nil))
	assert.ElementsMatch(t, []string{"builder", "templates"}, CapabilitiesFor(AccessLimited, nil))
	assert.Contains(t, CapabilitiesFor(AccessTrial, nil), "ai_chat")
	assert.Contains(t, CapabilitiesFor(AccessFull, pro), "export_pine")
	assert.NotContains(t, CapabilitiesFor(AccessFull, pro), "premium_indicators")
	assert.Contains(t, CapabilitiesFor(AccessFull, premium), "premium_indicators")
}

func TestPolicyCan(t *testing.T) {
	p := Policy{Capabilities: []string{"builder", "ai_chat"}}
	assert.True(t, p.Can("ai_chat"))
	assert.False(t, p.Can("export_pine"))
}

func TestLimitedRulesFor(t *testing.T) {
	assert.Nil(t, LimitedRulesFor(AccessFull))
	assert.Nil(t, LimitedRulesFor(AccessTrial))

	limits := LimitedRulesFor(AccessLimited)
	if assert.NotNil(t, limits) {
		assert.Equal(t, 3, limits.MaxStrategies)
		assert.True(t, limits.LockPremiumNodes)
		assert.True(t, limits.NoExport)
		assert.True(t, limits.ShowBranding)
	}
}
