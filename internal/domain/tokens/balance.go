package tokens

import (
	"time"

	"gorm.io/gorm"
)

// Balance is the derived token position for a user. Never stored.
type Balance struct {
	Allocated int64 `json:"allocated"`
	Used      int64 `json:"used"`
	Remaining int64 `json:"remaining"`
}

// CalculateBalance derives {allocated, used, remaining} for a user.
//
// Allocated sums token_amount over allocations with is_active = true and
// (expires_at IS NULL OR expires_at > now). Used sums tokens_used over the
// usage log. A non-empty scope restricts allocations by reason and usage by
// request_type (e.g. "extra_credits_purchase" isolates purchased credits).
//
// Read-only; a user with no rows gets all-zero figures. Remaining clamps
// at zero.
func CalculateBalance(db *gorm.DB, userID uint, scope string) (Balance, error) {
	now := time.Now()

	allocQ := db.Model(&TokenAllocation{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Where("expires_at IS NULL OR expires_at > ?", now)
	if scope != "" {
		allocQ = allocQ.Where("reason = ?", scope)
	}

	var allocated int64
	if err := allocQ.Select("COALESCE(SUM(token_amount), 0)").Scan(&allocated).Error; err != nil {
		return Balance{}, err
	}

	usageQ := db.Model(&TokenUsageLog{}).Where("user_id = ?", userID)
	if scope != "" {
		usageQ = usageQ.Where("request_type = ?", scope)
	}

	var used int64
	if err := usageQ.Select("COALESCE(SUM(tokens_used), 0)").Scan(&used).Error; err != nil {
		return Balance{}, err
	}

	remaining := allocated - used
	if remaining < 0 {
		remaining = 0
	}

	return Balance{Allocated: allocated, Used: used, Remaining: remaining}, nil
}

// ListUsage returns a page of a user's usage history, newest first.
func ListUsage(db *gorm.DB, userID uint, requestType string, limit, offset int) ([]TokenUsageLog, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := db.Model(&TokenUsageLog{}).Where("user_id = ?", userID)
	if requestType != "" {
		q = q.Where("request_type = ?", requestType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []TokenUsageLog
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
