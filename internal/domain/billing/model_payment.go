package billing

import (
	"time"

	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/plans"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"
)

const (
	KindSubscription = "subscription"
	KindCreditPack   = "credit_pack"
)

type Payment struct {
	ID                   uint `gorm:"primaryKey"`
	UserID               uint
	User                 users.User
	PlanID               *uint
	Plan                 *plans.Plan
	Kind                 string `gorm:"type:varchar(20);not null;default:'subscription'"`
	StripeSessionID      string `gorm:"uniqueIndex"`
	StripeSubscriptionID *string
	AmountUSD            float64
	TokensGranted        int64 // credit packs only
	Status               string
	InvoiceID            *string
	ReceiptURL           *string
	CreatedAt            time.Time
}
