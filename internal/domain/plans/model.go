package plans

type Plan struct {
	ID            uint `gorm:"primaryKey"`
	Name          string
	PriceUSD      float64
	StripePriceID string `gorm:"column:stripe_price_id;not null;uniqueIndex:idx_plans_stripe_price_id"`
	Interval      string
	Tier          string `gorm:"column:tier"` // "free" | "pro" | "premium"

	// Tokens included per billing period. Synced from Stripe price metadata
	// (monthly_tokens); tier default applies when 0.
	MonthlyTokens int64 `gorm:"column:monthly_tokens;not null;default:0"`
}
