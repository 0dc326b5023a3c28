package users

import (
	"time"

	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/access"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/plans"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/tokens"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/infra/stripe"
)

func BuildPlanDTO(p *plans.Plan) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:            p.ID,
		Key:           p.Name,
		Tier:          plans.PlanTier(p),
		Interval:      p.Interval,
		PriceUSD:      p.PriceUSD,
		MonthlyTokens: p.MonthlyTokens,
		StripePriceID: p.StripePriceID,
	}
}

func BuildSubscriptionDTO(u users.User) *SubscriptionDTO {
	if u.SubscriptionId == nil || *u.SubscriptionId == "" {
		return nil
	}
	return &SubscriptionDTO{
		Status:               stripe.NormalizeStripeStatus(u.StripeSubscriptionStatus),
		StartsAt:             u.SubscriptionStart,
		CurrentPeriodEnd:     u.CurrentPeriodEnd,
		StripeSubscriptionID: u.SubscriptionId,
		StripeScheduleID:     u.StripeScheduleID,
	}
}

func BuildTrialDTO(now time.Time, start, end *time.Time) *TrialDTO {
	if start == nil || end == nil {
		return nil
	}

	var daysLeft *int
	if now.Before(*end) {
		d := int(time.Until(*end).Hours() / 24)
		if d < 0 {
			d = 0
		}
		daysLeft = &d
	} else {
		d := 0
		daysLeft = &d
	}

	return &TrialDTO{
		StartsAt: start,
		EndsAt:   end,
		DaysLeft: daysLeft,
	}
}

func BuildPendingChangeDTO(u users.User) *PendingChangeDTO {
	if u.PendingPlanID == nil || u.PendingPlan == nil || u.PendingPlanStartDate == nil {
		return nil
	}
	return &PendingChangeDTO{
		EffectiveAt: u.PendingPlanStartDate,
		Plan: &PlanLiteDTO{
			Key:      u.PendingPlan.Name,
			Interval: u.PendingPlan.Interval,
			PriceUSD: u.PendingPlan.PriceUSD,
		},
	}
}

func BuildTokensDTO(b tokens.Balance) TokensDTO {
	return TokensDTO{
		Allocated: b.Allocated,
		Used:      b.Used,
		Remaining: b.Remaining,
	}
}

func BuildAccessBuilderDTO(policy access.Policy, limits *LimitsDTO) AccessBuilderDTO {
	return AccessBuilderDTO{
		Mode:   string(policy.EditorMode),
		Limits: limits,
	}
}
