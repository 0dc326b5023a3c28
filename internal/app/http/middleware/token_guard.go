package middleware

import (
	"net/http"
	"time"

	"github.com/RahulEdward/pinegeniev2-sub011/database"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/tokens"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"

	"github.com/gin-gonic/gin"
)

// RequireActiveSubscription gates plan-change operations on a live
// subscription.
func RequireActiveSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")
		var user users.User

		if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil || user.SubscriptionEnd == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Subscription not found or expired",
			})
			return
		}

		if time.Now().After(*user.SubscriptionEnd) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error": "Your subscription has expired",
			})
			return
		}

		c.Next()
	}
}

// RequireTokenBalance rejects requests from users whose remaining token
// balance is zero. The actual deduction still happens atomically in the
// ledger; this guard only short-circuits obviously broke accounts before
// an AI call is made.
func RequireTokenBalance() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
			return
		}

		balance, err := tokens.CalculateBalance(database.DB, userID, "")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check token balance"})
			return
		}

		if balance.Remaining <= 0 {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":     "Out of tokens. Upgrade your plan or purchase extra credits.",
				"remaining": 0,
			})
			return
		}

		c.Next()
	}
}
