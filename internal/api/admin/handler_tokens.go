package admin

import (
	"net/http"
	"os"
	"strconv"

	"github.com/RahulEdward/pinegeniev2-sub011/database"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/tokens"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	stripesub "github.com/stripe/stripe-go/v75/subscription"
)

// POST /admin/tokens/grant
//
// Manual grant for support cases (refunds, goodwill, contest prizes).
func GrantTokensToUser(c *gin.Context) {
	adminID := c.GetUint("user_id")

	var body struct {
		UserID uint   `json:"user_id" binding:"required"`
		Amount int64  `json:"amount" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid user_id/amount"})
		return
	}

	var target users.User
	if err := database.DB.First(&target, body.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	reason := tokens.ReasonAdminGrant
	if body.Note != "" {
		reason = body.Note
	}

	alloc, err := tokens.GrantTokens(database.DB, target.ID, body.Amount, reason, &adminID, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, alloc)
}

// GET /admin/users/:id/tokens
func GetUserTokenDetails(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	balance, err := tokens.CalculateBalance(database.DB, uint(targetID), "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balance"})
		return
	}

	var allocations []tokens.TokenAllocation
	if err := database.DB.
		Where("user_id = ?", uint(targetID)).
		Order("created_at DESC").
		Find(&allocations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load allocations"})
		return
	}

	usage, total, err := tokens.ListUsage(database.DB, uint(targetID), "", 50, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load usage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":     balance,
		"allocations": allocations,
		"usage":       usage,
		"usage_total": total,
	})
}

// GET /admin/tokens/stats
func GetTokenStats(c *gin.Context) {
	var stats struct {
		TotalAllocated    int64 `json:"total_allocated"`
		TotalUsed         int64 `json:"total_used"`
		ActiveAllocations int64 `json:"active_allocations"`
		UsersWithBalance  int64 `json:"users_with_balance"`
	}

	if err := database.DB.Model(&tokens.TokenAllocation{}).
		Where("is_active = ?", true).
		Select("COALESCE(SUM(token_amount), 0)").
		Scan(&stats.TotalAllocated).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate allocations"})
		return
	}

	if err := database.DB.Model(&tokens.TokenUsageLog{}).
		Select("COALESCE(SUM(tokens_used), 0)").
		Scan(&stats.TotalUsed).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate usage"})
		return
	}

	database.DB.Model(&tokens.TokenAllocation{}).
		Where("is_active = ?", true).
		Count(&stats.ActiveAllocations)

	database.DB.Model(&tokens.TokenAllocation{}).
		Where("is_active = ?", true).
		Distinct("user_id").
		Count(&stats.UsersWithBalance)

	c.JSON(http.StatusOK, stats)
}

// POST /admin/reconcile
//
// Deactivates leftover allocations for every free-tier user. Safe to
// run repeatedly; the nightly job calls the same routine.
func ReconcileFreeTier(c *gin.Context) {
	report, err := tokens.ReconcileFreeTier(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// isLiveSubscription reports whether a subscription currently entitles the
// customer to service. Trialing counts: two trials are as wrong as two
// active subscriptions.
func isLiveSubscription(s stripe.SubscriptionStatus) bool {
	return s == stripe.SubscriptionStatusActive || s == stripe.SubscriptionStatusTrialing
}

// GET /admin/audit/subscriptions
//
// Flags users carrying more than one live Stripe subscription. The
// ledger assumes one; duplicates are surfaced for manual cleanup, never
// auto-repaired.
func AuditSubscriptions(c *gin.Context) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}

	var customers []users.User
	if err := database.DB.
		Where("stripe_customer_id IS NOT NULL AND stripe_customer_id <> ''").
		Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	type duplicate struct {
		UserID          uint     `json:"user_id"`
		Email           string   `json:"email"`
		SubscriptionIDs []string `json:"subscription_ids"`
	}
	duplicates := []duplicate{}

	for _, u := range customers {
		// status=all, then keep live ones: trialing duplicates matter
		// just as much as active ones.
		params := &stripe.SubscriptionListParams{
			Customer: u.StripeCustomerID,
			Status:   stripe.String("all"),
		}

		var live []string
		it := stripesub.List(params)
		for it.Next() {
			s := it.Subscription()
			if isLiveSubscription(s.Status) {
				live = append(live, s.ID)
			}
		}
		if err := it.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe list failed", "details": err.Error()})
			return
		}

		if len(live) > 1 {
			duplicates = append(duplicates, duplicate{
				UserID:          u.ID,
				Email:           u.Email,
				SubscriptionIDs: live,
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"checked":    len(customers),
		"duplicates": duplicates,
	})
}
