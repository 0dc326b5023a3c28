package tokens

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidAmount       = errors.New("token amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient token balance")
)

// GrantTokens appends an active allocation for a user.
func GrantTokens(db *gorm.DB, userID uint, amount int64, reason string, grantedBy *uint, expiresAt *time.Time) (*TokenAllocation, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	alloc := TokenAllocation{
		UserID:      userID,
		TokenAmount: amount,
		Reason:      reason,
		IsActive:    true,
		ExpiresAt:   expiresAt,
		GrantedBy:   grantedBy,
	}
	if err := db.Create(&alloc).Error; err != nil {
		return nil, err
	}
	return &alloc, nil
}

// SpendTokens atomically checks the unscoped balance and appends a usage
// row. The allocation rows are locked for the duration of the transaction
// (FOR UPDATE on Postgres), so concurrent spends against the same user
// serialize at the datastore instead of racing check-then-act.
//
// Returns ErrInsufficientBalance without writing when the balance is short.
func SpendTokens(db *gorm.DB, userID uint, amount int64, requestType, requestID string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	return db.Transaction(func(tx *gorm.DB) error {
		lockQ := tx
		// SQLite serializes writers on its own and rejects FOR UPDATE.
		if tx.Dialector.Name() == "postgres" {
			lockQ = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var allocs []TokenAllocation
		if err := lockQ.
			Where("user_id = ? AND is_active = ?", userID, true).
			Find(&allocs).Error; err != nil {
			return err
		}

		now := time.Now()
		var allocated int64
		for _, a := range allocs {
			if a.ExpiresAt != nil && !a.ExpiresAt.After(now) {
				continue
			}
			allocated += a.TokenAmount
		}

		var used int64
		if err := tx.Model(&TokenUsageLog{}).
			Where("user_id = ?", userID).
			Select("COALESCE(SUM(tokens_used), 0)").
			Scan(&used).Error; err != nil {
			return err
		}

		if allocated-used < amount {
			return ErrInsufficientBalance
		}

		return tx.Create(&TokenUsageLog{
			UserID:      userID,
			TokensUsed:  amount,
			RequestType: requestType,
			RequestID:   requestID,
		}).Error
	})
}

// RecordUsage appends a usage row without a balance check. Used for metered
// operations whose true cost is only known after the provider call; the
// balance calculation clamps at zero, so a small overdraft is absorbed.
func RecordUsage(db *gorm.DB, userID uint, amount int64, requestType, requestID string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return db.Create(&TokenUsageLog{
		UserID:      userID,
		TokensUsed:  amount,
		RequestType: requestType,
		RequestID:   requestID,
	}).Error
}

// DeactivateUserAllocations soft-deactivates all of a user's active
// allocations, stamping the given human-readable reason. Usage rows are
// untouched. Idempotent: already-inactive rows are not matched.
func DeactivateUserAllocations(db *gorm.DB, userID uint, reason string) (int64, error) {
	res := db.Model(&TokenAllocation{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]interface{}{
			"is_active":           false,
			"deactivated_at":      time.Now(),
			"deactivation_reason": reason,
		})
	return res.RowsAffected, res.Error
}

// DeactivateSubscriptionGrants retires a user's active subscription-grant
// allocations. Called before issuing the grant for a new billing period so
// allowances do not stack across plan changes.
func DeactivateSubscriptionGrants(db *gorm.DB, userID uint, reason string) (int64, error) {
	res := db.Model(&TokenAllocation{}).
		Where("user_id = ? AND is_active = ? AND reason = ?", userID, true, ReasonSubscriptionGrant).
		Updates(map[string]interface{}{
			"is_active":           false,
			"deactivated_at":      time.Now(),
			"deactivation_reason": reason,
		})
	return res.RowsAffected, res.Error
}

// SweepExpiredAllocations marks expired-but-still-active allocations
// inactive. Expired rows already contribute nothing to any balance; the
// sweep only keeps the active flag honest for reporting.
func SweepExpiredAllocations(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Model(&TokenAllocation{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Updates(map[string]interface{}{
			"is_active":           false,
			"deactivated_at":      now,
			"deactivation_reason": "allocation expired",
		})
	return res.RowsAffected, res.Error
}
