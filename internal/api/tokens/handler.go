package tokens

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/RahulEdward/pinegeniev2-sub011/database"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/billing"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/tokens"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
)

// GET /tokens/balance?scope=extra_credits_purchase
//
// Without scope the balance covers every active allocation and all usage.
// With scope it is restricted to allocations with that reason and usage
// rows with that request type.
func GetBalance(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	scope := c.Query("scope")

	balance, err := tokens.CalculateBalance(database.DB, userID, scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balance"})
		return
	}

	c.JSON(http.StatusOK, balance)
}

// GET /tokens/usage?request_type=ai_chat&limit=50&offset=0
func GetUsageHistory(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	requestType := c.Query("request_type")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, total, err := tokens.ListUsage(database.DB, userID, requestType, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load usage history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"usage":  entries,
	})
}

// creditPacks are the one-time purchase options. Prices in cents.
var creditPacks = map[string]struct {
	Tokens     int64
	PriceCents int64
	Label      string
}{
	"small":  {Tokens: 100_000, PriceCents: 500, Label: "100K tokens"},
	"medium": {Tokens: 500_000, PriceCents: 2000, Label: "500K tokens"},
	"large":  {Tokens: 2_000_000, PriceCents: 6000, Label: "2M tokens"},
}

// GET /tokens/packs
func ListCreditPacks(c *gin.Context) {
	type packDTO struct {
		ID       string  `json:"id"`
		Label    string  `json:"label"`
		Tokens   int64   `json:"tokens"`
		PriceUSD float64 `json:"price_usd"`
	}

	out := []packDTO{}
	for _, id := range []string{"small", "medium", "large"} {
		p := creditPacks[id]
		out = append(out, packDTO{
			ID:       id,
			Label:    p.Label,
			Tokens:   p.Tokens,
			PriceUSD: float64(p.PriceCents) / 100.0,
		})
	}

	c.JSON(http.StatusOK, out)
}

// POST /tokens/purchase
//
// Creates a one-time (payment mode) Stripe checkout for a credit pack.
// The webhook grants the tokens once the payment completes.
func PurchaseCredits(c *gin.Context) {
	var body struct {
		Pack string `json:"pack" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid pack"})
		return
	}

	pack, ok := creditPacks[body.Pack]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown credit pack"})
		return
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:5173"
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(appURL + "/account?credits=1"),
		CancelURL:  stripe.String(appURL + "/account?canceled=1"),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),

		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(pack.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Pine Genie credits: " + pack.Label),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},

		ClientReferenceID: stripe.String(fmt.Sprint(userID)),
	}
	params.AddMetadata("kind", billing.KindCreditPack)
	params.AddMetadata("user_id", fmt.Sprint(userID))
	params.AddMetadata("tokens", fmt.Sprint(pack.Tokens))

	s, err := checkoutsession.New(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": s.URL})
}
