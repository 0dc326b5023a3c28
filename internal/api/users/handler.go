package users

import (
	"net/http"
	"time"

	"github.com/RahulEdward/pinegeniev2-sub011/config"
	"github.com/RahulEdward/pinegeniev2-sub011/database"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/access"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/tokens"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"

	"github.com/gin-gonic/gin"
)

func GetCurrentUser(c *gin.Context) {
	email := c.GetString("email")
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.
		Preload("Plan").
		Preload("PendingPlan").
		Where("email = ?", email).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	now := time.Now()

	policy := access.ComputePolicy(now, user)

	balance, err := tokens.CalculateBalance(database.DB, user.ID, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute token balance"})
		return
	}

	// map limits -> dto (only when not nil)
	var limits *LimitsDTO
	if policy.Limits != nil {
		limits = &LimitsDTO{
			MaxStrategies:    policy.Limits.MaxStrategies,
			LockPremiumNodes: policy.Limits.LockPremiumNodes,
			NoExport:         policy.Limits.NoExport,
			ShowBranding:     policy.Limits.ShowBranding,
		}
	}

	resp := MeResponse{
		User: UserDTO{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			Lastname:   user.Lastname,
			Role:       user.Role,
			IsVerified: user.IsVerified,
		},
		Billing: BillingDTO{
			Plan:          BuildPlanDTO(user.Plan),
			Subscription:  BuildSubscriptionDTO(user),
			Trial:         BuildTrialDTO(now, user.TrialStartAt, user.TrialEndAt),
			PendingChange: BuildPendingChangeDTO(user),
		},
		Tokens: BuildTokensDTO(balance),
		Access: AccessDTO{
			State:        string(policy.State),
			Capabilities: policy.Capabilities,
			Builder:      BuildAccessBuilderDTO(policy, limits),
		},
	}

	c.JSON(http.StatusOK, resp)
}

func VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	type Token struct {
		UserID int
	}
	var t Token
	if err := database.DB.Table("verification_tokens").Where("token = ?", token).First(&t).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	if err := database.DB.Model(&users.User{}).Where("id = ?", t.UserID).Update("is_verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify user"})
		return
	}

	_ = database.DB.Exec("DELETE FROM verification_tokens WHERE token = ?", token)

	c.Redirect(http.StatusTemporaryRedirect, config.APP_URL+"/signin")
}
