package tokens

import (
	"fmt"

	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/plans"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"
	stripeinfra "github.com/RahulEdward/pinegeniev2-sub011/internal/infra/stripe"

	"gorm.io/gorm"
)

const downgradeReason = "plan downgraded to free tier"

// ReconcileReport summarizes a reconciliation run.
type ReconcileReport struct {
	UsersScanned           int      `json:"users_scanned"`
	FreeTierUsers          int      `json:"free_tier_users"`
	UsersReconciled        int      `json:"users_reconciled"`
	AllocationsDeactivated int64    `json:"allocations_deactivated"`
	Errors                 []string `json:"errors,omitempty"`
}

// IsFreeTier reports whether a user is on the free tier: no active
// subscription, or an active subscription whose plan tier is "free".
func IsFreeTier(u *users.User) bool {
	if u.SubscriptionId == nil || *u.SubscriptionId == "" {
		return true
	}
	switch stripeinfra.NormalizeStripeStatus(u.StripeSubscriptionStatus) {
	case "active", "trialing":
		return plans.PlanTier(u.Plan) == plans.TierFree
	default:
		return true
	}
}

// ReconcileFreeTier deactivates leftover subscription grants for every
// free-tier user. Purchased credits, signup bonuses and admin grants are
// not plan-derived and survive a downgrade. Bulk and idempotent: a second
// run matches nothing because the predicate re-evaluates current state.
// Rows are soft-deactivated, never deleted, and the usage log is never
// touched.
//
// Not transactional across users: a failure on one user is recorded and the
// run continues, since re-running is always safe.
func ReconcileFreeTier(db *gorm.DB) (ReconcileReport, error) {
	var report ReconcileReport

	var allUsers []users.User
	if err := db.Preload("Plan").Find(&allUsers).Error; err != nil {
		return report, err
	}
	report.UsersScanned = len(allUsers)

	for i := range allUsers {
		u := &allUsers[i]
		if !IsFreeTier(u) {
			continue
		}
		report.FreeTierUsers++

		count, err := DeactivateSubscriptionGrants(db, u.ID, downgradeReason)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("user %d: %v", u.ID, err))
			continue
		}
		if count > 0 {
			report.UsersReconciled++
			report.AllocationsDeactivated += count
		}
	}

	return report, nil
}
