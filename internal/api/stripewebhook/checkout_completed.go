package stripewebhooks

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/RahulEdward/pinegeniev2-sub011/database"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/billing"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/plans"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/tokens"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/subscription"
)

func handleCheckoutSessionCompleted(c *gin.Context, session *stripe.CheckoutSession) error {
	// A payment already recorded for this session means Stripe retried
	// an event we finished processing.
	var existing billing.Payment
	if err := database.DB.Where("stripe_session_id = ?", session.ID).First(&existing).Error; err == nil {
		return nil
	}

	// Fetch full session with expansions
	fullSession, err := checkoutsession.Get(session.ID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Expand: []*string{
				stripe.String("subscription"),
				stripe.String("customer"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to fetch expanded checkout session: %w", err)
	}

	// One-time payments carry kind=credit_pack metadata; everything else
	// is a subscription checkout.
	if fullSession.Metadata != nil && fullSession.Metadata["kind"] == billing.KindCreditPack {
		return handleCreditPackCompleted(fullSession)
	}

	return handleSubscriptionCheckoutCompleted(fullSession)
}

func handleSubscriptionCheckoutCompleted(fullSession *stripe.CheckoutSession) error {
	if fullSession.Subscription == nil || fullSession.Subscription.ID == "" {
		return errors.New("checkout session missing subscription")
	}
	subscriptionID := fullSession.Subscription.ID

	subData, err := subscription.Get(subscriptionID, nil)
	if err != nil || subData == nil || subData.Items == nil || len(subData.Items.Data) == 0 || subData.Items.Data[0].Price == nil {
		return fmt.Errorf("failed to fetch subscription items: %w", err)
	}

	// Identify user: metadata.user_id preferred, else ClientReferenceID
	userID, err := userIDFromSubscriptionOrRef(subData, fullSession.ClientReferenceID)
	if err != nil {
		return err
	}

	var user users.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	// Map Stripe price -> Plan
	priceID := subData.Items.Data[0].Price.ID
	var plan plans.Plan
	if err := database.DB.Where("stripe_price_id = ?", priceID).First(&plan).Error; err != nil {
		return fmt.Errorf("plan not found for stripe price_id=%s: %w", priceID, err)
	}

	now := time.Now()
	periodEnd := time.Unix(subData.CurrentPeriodEnd, 0)
	status := string(subData.Status)

	updates := map[string]interface{}{
		"plan_id":                    plan.ID,
		"subscription_id":            subscriptionID,
		"subscription_start":         now,
		"subscription_end":           periodEnd,
		"current_period_end":         periodEnd,
		"stripe_subscription_status": status,
		"trial_start_at":             nil,
		"trial_end_at":               nil,
		"pending_plan_id":            nil,
		"pending_plan_start_date":    nil,
		"stripe_schedule_id":         nil,
	}

	if fullSession.Customer != nil && fullSession.Customer.ID != "" {
		updates["stripe_customer_id"] = fullSession.Customer.ID
	}

	// Optional: cancel old sub if different (be careful—can surprise users if multi-subscriptions)
	if user.SubscriptionId != nil && *user.SubscriptionId != "" && *user.SubscriptionId != subscriptionID {
		_, _ = subscription.Cancel(*user.SubscriptionId, nil)
	}

	if err := database.DB.Model(&users.User{}).
		Where("id = ?", user.ID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update user after checkout: %w", err)
	}

	if err := issuePlanTokens(user.ID, &plan, periodEnd); err != nil {
		return err
	}

	payment := billing.Payment{
		UserID:               user.ID,
		PlanID:               &plan.ID,
		Kind:                 billing.KindSubscription,
		StripeSessionID:      fullSession.ID,
		StripeSubscriptionID: &subscriptionID,
		AmountUSD:            float64(fullSession.AmountTotal) / 100.0,
		Status:               "paid",
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	return nil
}

// issuePlanTokens replaces previous plan grants with a fresh grant for
// the plan's allowance, expiring at the end of the billing period.
func issuePlanTokens(userID uint, plan *plans.Plan, periodEnd time.Time) error {
	if _, err := tokens.DeactivateSubscriptionGrants(database.DB, userID, "replaced by new subscription grant"); err != nil {
		return fmt.Errorf("failed to retire old plan grants: %w", err)
	}

	allowance := plans.PlanTokenAllowance(plan)
	if _, err := tokens.GrantTokens(database.DB, userID, allowance, tokens.ReasonSubscriptionGrant, nil, &periodEnd); err != nil {
		return fmt.Errorf("failed to grant plan tokens: %w", err)
	}
	return nil
}

func handleCreditPackCompleted(fullSession *stripe.CheckoutSession) error {
	userIDStr := ""
	if fullSession.Metadata != nil {
		userIDStr = fullSession.Metadata["user_id"]
	}
	if userIDStr == "" {
		userIDStr = fullSession.ClientReferenceID
	}
	if userIDStr == "" {
		return errors.New("credit pack session missing user_id")
	}

	uid64, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user_id %q: %w", userIDStr, err)
	}
	userID := uint(uid64)

	tokenCount, err := strconv.ParseInt(fullSession.Metadata["tokens"], 10, 64)
	if err != nil || tokenCount <= 0 {
		return fmt.Errorf("invalid token count in credit pack metadata: %q", fullSession.Metadata["tokens"])
	}

	var user users.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	// Purchased credits never expire
	if _, err := tokens.GrantTokens(database.DB, user.ID, tokenCount, tokens.ReasonExtraCreditsPurchase, nil, nil); err != nil {
		return fmt.Errorf("failed to grant purchased credits: %w", err)
	}

	payment := billing.Payment{
		UserID:          user.ID,
		Kind:            billing.KindCreditPack,
		StripeSessionID: fullSession.ID,
		AmountUSD:       float64(fullSession.AmountTotal) / 100.0,
		TokensGranted:   tokenCount,
		Status:          "paid",
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		return fmt.Errorf("failed to record credit pack payment: %w", err)
	}

	return nil
}

func userIDFromSubscriptionOrRef(sub *stripe.Subscription, clientRef string) (uint, error) {
	userIDStr := ""
	if sub.Metadata != nil {
		userIDStr = sub.Metadata["user_id"]
	}
	if userIDStr == "" {
		userIDStr = clientRef
	}
	if userIDStr == "" {
		return 0, errors.New("missing user_id (metadata.user_id or client_reference_id)")
	}

	uid64, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user_id %q: %w", userIDStr, err)
	}
	return uint(uid64), nil
}
