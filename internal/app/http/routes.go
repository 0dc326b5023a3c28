package routes

import (
	"github.com/RahulEdward/pinegeniev2-sub011/config"
	adminapi "github.com/RahulEdward/pinegeniev2-sub011/internal/api/admin"
	authapi "github.com/RahulEdward/pinegeniev2-sub011/internal/api/auth"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/api/billing"
	chatapi "github.com/RahulEdward/pinegeniev2-sub011/internal/api/chat"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/api/plans"
	strategiesapi "github.com/RahulEdward/pinegeniev2-sub011/internal/api/strategies"
	stripewebhooks "github.com/RahulEdward/pinegeniev2-sub011/internal/api/stripewebhook"
	tokensapi "github.com/RahulEdward/pinegeniev2-sub011/internal/api/tokens"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/api/users"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	r.POST("/webhook", stripewebhooks.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/templates/strategies", strategiesapi.ListTemplateStrategies)
	r.GET("/shared/:slug", strategiesapi.GetSharedStrategy)

	public := r.Group("/")
	public.Use(middleware.SanitizeJSONBody())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.GET("/plans", plans.ListPlans)
	public.GET("/verify", users.VerifyEmail)
	public.POST("/resend-verification", authapi.ResendVerification)
	public.POST("/request-password-reset", authapi.RequestPasswordReset)
	public.POST("/reset-password", authapi.ResetPassword)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", users.GetCurrentUser)
	auth.GET("/payments", billing.GetPaymentHistory)
	auth.POST("/create-checkout-session", billing.CreateCheckoutSession)
	auth.POST("/billing-portal", billing.CreateBillingPortal)
	auth.POST("/change-password", authapi.ChangePassword)
	auth.POST("/cancel-downgrade", billing.CancelDowngrade)

	auth.GET("/tokens/balance", tokensapi.GetBalance)
	auth.GET("/tokens/usage", tokensapi.GetUsageHistory)
	auth.GET("/tokens/packs", tokensapi.ListCreditPacks)
	auth.POST("/tokens/purchase", tokensapi.PurchaseCredits)

	auth.GET("/strategies", strategiesapi.ListStrategies)
	auth.POST("/strategies", strategiesapi.CreateStrategy)
	auth.GET("/strategies/:id", strategiesapi.GetStrategy)
	auth.PUT("/strategies/:id", strategiesapi.UpdateStrategy)
	auth.DELETE("/strategies/:id", strategiesapi.DeleteStrategy)

	auth.GET("/strategies/:id/versions", strategiesapi.ListVersions)
	auth.POST("/strategies/:id/versions/:version/restore", strategiesapi.RestoreVersion)

	auth.POST("/strategies/:id/publish", strategiesapi.PublishStrategy)
	auth.POST("/strategies/:id/unpublish", strategiesapi.UnpublishStrategy)

	auth.POST("/strategies/:id/generate", strategiesapi.GeneratePineScript)

	auth.POST("/templates/strategies/:id/copy", strategiesapi.CopyTemplateToUser)

	// AI assistant: rate limited per user, blocked on empty balance
	aiLimiter := middleware.NewAIRateLimiter(config.AI_REQUESTS_PER_MINUTE)
	chat := auth.Group("/chat")
	chat.GET("/conversations", chatapi.ListConversations)
	chat.POST("/conversations", chatapi.CreateConversation)
	chat.GET("/conversations/:id", chatapi.GetConversation)
	chat.DELETE("/conversations/:id", chatapi.DeleteConversation)
	chat.POST("/conversations/:id/messages",
		aiLimiter.Middleware(),
		middleware.RequireTokenBalance(),
		chatapi.PostMessage)

	// Subscribed users
	subscribed := auth.Group("/")
	subscribed.Use(middleware.RequireActiveSubscription())
	subscribed.POST("/change-plan", billing.ChangePlan)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/dashboard", adminapi.AdminDashboard)
	admin.GET("/stats", adminapi.GetAdminStats)
	admin.GET("/users", adminapi.ListAllUsers)
	admin.GET("/payments", adminapi.ListAllPayments)
	admin.GET("/user/:id", adminapi.GetUserDetails)
	admin.GET("/users/:id/tokens", adminapi.GetUserTokenDetails)
	admin.POST("/tokens/grant", adminapi.GrantTokensToUser)
	admin.GET("/tokens/stats", adminapi.GetTokenStats)
	admin.POST("/sync-plans", plans.SyncPlansFromStripe)
	admin.POST("/reconcile", adminapi.ReconcileFreeTier)
	admin.GET("/audit/subscriptions", adminapi.AuditSubscriptions)
	admin.POST("/templates/strategies", strategiesapi.CreateTemplateStrategy)
}
