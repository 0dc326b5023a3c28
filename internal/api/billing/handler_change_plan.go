package billing

import (
	"net/http"
	"os"
	"time"

	"github.com/RahulEdward/pinegeniev2-sub011/database"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/plans"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	stripesub "github.com/stripe/stripe-go/v75/subscription"
	schedules "github.com/stripe/stripe-go/v75/subscriptionschedule"
)

// POST /change-plan
//
// Upgrades take effect immediately with prorations; downgrades are
// scheduled for the next billing cycle through a subscription schedule.
// Token grants for the new plan come from the subscription.updated
// webhook once Stripe applies the change, never from this handler.
func ChangePlan(c *gin.Context) {
	var body struct {
		PriceID string `json:"price_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid price_id"})
		return
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}

	email := c.GetString("email")
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var user users.User
	if err := database.DB.Preload("Plan").Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if user.SubscriptionId == nil || *user.SubscriptionId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No active subscription to change. Use checkout first."})
		return
	}

	var targetPlan plans.Plan
	if err := database.DB.Where("stripe_price_id = ?", body.PriceID).First(&targetPlan).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target plan not found in DB (run /admin/sync-plans)"})
		return
	}

	sub, err := stripesub.Get(*user.SubscriptionId, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch Stripe subscription", "details": err.Error()})
		return
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Subscription has no price item"})
		return
	}

	item := sub.Items.Data[0]
	if item.Price.ID == targetPlan.StripePriceID {
		c.JSON(http.StatusOK, gin.H{"message": "Already on this plan"})
		return
	}

	// Direction decided by our own plan prices, not Stripe's
	isUpgrade := user.Plan == nil || targetPlan.PriceUSD > user.Plan.PriceUSD
	if isUpgrade {
		upgradeNow(c, &user, &targetPlan, sub, item.ID)
		return
	}
	scheduleDowngrade(c, &user, &targetPlan, sub, item.Price.ID)
}

func upgradeNow(c *gin.Context, user *users.User, targetPlan *plans.Plan, sub *stripe.Subscription, itemID string) {
	updatedSub, err := stripesub.Update(sub.ID, &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(itemID),
				Price: stripe.String(targetPlan.StripePriceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade subscription", "details": err.Error()})
		return
	}

	periodEnd := time.Unix(updatedSub.CurrentPeriodEnd, 0)

	if err := database.DB.Model(&users.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"plan_id":                 targetPlan.ID,
			"subscription_start":      time.Now(),
			"subscription_end":        periodEnd,
			"current_period_end":      periodEnd,
			"pending_plan_id":         nil,
			"pending_plan_start_date": nil,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user in DB", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            "Upgraded now (prorated automatically by Stripe)",
		"is_upgrade":         true,
		"current_period_end": periodEnd,
		"subscription_id":    updatedSub.ID,
	})
}

func scheduleDowngrade(c *gin.Context, user *users.User, targetPlan *plans.Plan, sub *stripe.Subscription, currentPriceID string) {
	effectiveAt := time.Unix(sub.CurrentPeriodEnd, 0)

	scheduleID := ""
	if sub.Schedule != nil {
		scheduleID = sub.Schedule.ID
	}
	if scheduleID == "" {
		schedule, err := schedules.New(&stripe.SubscriptionScheduleParams{
			FromSubscription: stripe.String(sub.ID),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedule", "details": err.Error()})
			return
		}
		scheduleID = schedule.ID
	}

	// Phase 1 finishes the paid period on the current price, phase 2
	// starts the cheaper plan. Release afterwards so the subscription
	// runs on its own again.
	_, err := schedules.Update(scheduleID, &stripe.SubscriptionScheduleParams{
		EndBehavior: stripe.String("release"),
		Phases: []*stripe.SubscriptionSchedulePhaseParams{
			{
				StartDate: stripe.Int64(sub.CurrentPeriodStart),
				EndDate:   stripe.Int64(sub.CurrentPeriodEnd),
				Items: []*stripe.SubscriptionSchedulePhaseItemParams{
					{Price: stripe.String(currentPriceID), Quantity: stripe.Int64(1)},
				},
			},
			{
				StartDate: stripe.Int64(sub.CurrentPeriodEnd),
				Items: []*stripe.SubscriptionSchedulePhaseItemParams{
					{Price: stripe.String(targetPlan.StripePriceID), Quantity: stripe.Int64(1)},
				},
			},
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update schedule phases", "details": err.Error()})
		return
	}

	// Current plan stays until the period ends; only mark it pending
	if err := database.DB.Model(&users.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"pending_plan_id":         targetPlan.ID,
			"pending_plan_start_date": effectiveAt,
			"stripe_schedule_id":      scheduleID,
			"current_period_end":      effectiveAt,
			"subscription_end":        effectiveAt,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store pending downgrade", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Downgrade scheduled for next billing cycle",
		"is_upgrade":   false,
		"effective_at": effectiveAt,
		"schedule_id":  scheduleID,
	})
}
