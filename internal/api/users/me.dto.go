package users

import "time"

type MeResponse struct {
	User    UserDTO    `json:"user"`
	Billing BillingDTO `json:"billing"`
	Tokens  TokensDTO  `json:"tokens"`
	Access  AccessDTO  `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Lastname   string `json:"lastname"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	Plan          *PlanDTO          `json:"plan"`
	Subscription  *SubscriptionDTO  `json:"subscription"`
	Trial         *TrialDTO         `json:"trial"`
	PendingChange *PendingChangeDTO `json:"pending_change"`
}

type PlanDTO struct {
	ID            uint    `json:"id"`
	Key           string  `json:"key"`
	Tier          string  `json:"tier"`
	Interval      string  `json:"interval"`
	PriceUSD      float64 `json:"price_usd"`
	MonthlyTokens int64   `json:"monthly_tokens"`
	StripePriceID string  `json:"stripe_price_id"`
}

type SubscriptionDTO struct {
	Status               string     `json:"status"`
	StartsAt             *time.Time `json:"starts_at"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end"`
	StripeSubscriptionID *string    `json:"stripe_subscription_id"`
	StripeScheduleID     *string    `json:"stripe_schedule_id"`
}

type TrialDTO struct {
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	DaysLeft *int       `json:"days_left"`
}

type PendingChangeDTO struct {
	EffectiveAt *time.Time   `json:"effective_at"`
	Plan        *PlanLiteDTO `json:"plan"`
}

type PlanLiteDTO struct {
	Key      string  `json:"key"`
	Interval string  `json:"interval"`
	PriceUSD float64 `json:"price_usd"`
}

/* ---------- TOKENS ---------- */

type TokensDTO struct {
	Allocated int64 `json:"allocated"`
	Used      int64 `json:"used"`
	Remaining int64 `json:"remaining"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	State        string           `json:"state"` // trial|full|limited|locked
	Capabilities []string         `json:"capabilities"`
	Builder      AccessBuilderDTO `json:"builder"`
}

type AccessBuilderDTO struct {
	Mode   string     `json:"mode"` // full|limited
	Limits *LimitsDTO `json:"limits,omitempty"`
}

type LimitsDTO struct {
	MaxStrategies    int  `json:"max_strategies"`
	LockPremiumNodes bool `json:"lock_premium_nodes"`
	NoExport         bool `json:"no_export"`
	ShowBranding     bool `json:"show_branding"`
}
