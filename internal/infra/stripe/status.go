package stripe

import "strings"

// Subscription statuses collapse into the four states the access policy
// distinguishes. Unknown statuses pass through so they surface in logs
// and admin views instead of silently mapping to something else.
var statusAliases = map[string]string{
	"active":             "active",
	"trialing":           "trialing",
	"past_due":           "past_due",
	"unpaid":             "past_due",
	"canceled":           "canceled",
	"incomplete_expired": "canceled",
}

// NormalizeStripeStatus maps a raw Stripe subscription status onto the
// policy vocabulary. A nil or blank status means "none".
func NormalizeStripeStatus(s *string) string {
	if s == nil {
		return "none"
	}
	raw := strings.TrimSpace(*s)
	if raw == "" {
		return "none"
	}
	if mapped, ok := statusAliases[raw]; ok {
		return mapped
	}
	return raw
}
