package tokens

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&TokenAllocation{}, &TokenUsageLog{}))
	return db
}

func TestGrantTokens(t *testing.T) {
	db := setupTestDB(t)

	alloc, err := GrantTokens(db, 1, 500, ReasonSignupBonus, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(500), alloc.TokenAmount)
	assert.True(t, alloc.IsActive)
	assert.Nil(t, alloc.ExpiresAt)

	var count int64
	db.Model(&TokenAllocation{}).Where("user_id = ?", 1).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGrantTokensRejectsNonPositiveAmount(t *testing.T) {
	db := setupTestDB(t)

	_, err := GrantTokens(db, 1, 0, ReasonSignupBonus, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = GrantTokens(db, 1, -100, ReasonSignupBonus, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSpendTokensDebitsBalance(t *testing.T) {
	db := setupTestDB(t)

	_, err := GrantTokens(db, 1, 500, ReasonSubscriptionGrant, nil, nil)
	require.NoError(t, err)

	require.NoError(t, SpendTokens(db, 1, 120, RequestScriptGeneration, "strat-1"))

	b, err := CalculateBalance(db, 1, "")
	require.NoError(t, err)
	assert.Equal(t, int64(500), b.Allocated)
	assert.Equal(t, int64(120), b.Used)
	assert.Equal(t, int64(380), b.Remaining)
}

func TestSpendTokensInsufficientBalance(t *testing.T) {
	db := setupTestDB(t)

	_, err := GrantTokens(db, 1, 100, ReasonSignupBonus, nil, nil)
	require.NoError(t, err)

	err = SpendTokens(db, 1, 101, RequestScriptGeneration, "strat-1")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// nothing written on the failed spend
	var count int64
	db.Model(&TokenUsageLog{}).Where("user_id = ?", 1).Count(&count)
	assert.Equal(t, int64(0), count)

	// exact balance still spendable
	require.NoError(t, SpendTokens(db, 1, 100, RequestScriptGeneration, "strat-1"))
	err = SpendTokens(db, 1, 1, RequestScriptGeneration, "strat-1")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestSpendTokensIgnoresExpiredAllocations(t *testing.T) {
	db := setupTestDB(t)

	past := time.Now().Add(-time.Hour)
	_, err := GrantTokens(db, 1, 1000, ReasonSubscriptionGrant, nil, &past)
	require.NoError(t, err)

	err = SpendTokens(db, 1, 10, RequestScriptGeneration, "strat-1")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestRecordUsageAllowsOverdraft(t *testing.T) {
	db := setupTestDB(t)

	_, err := GrantTokens(db, 1, 100, ReasonSignupBonus, nil, nil)
	require.NoError(t, err)

	// metered usage can exceed what is left; balance clamps at zero
	require.NoError(t, RecordUsage(db, 1, 150, RequestAIChat, "conv-1"))

	b, err := CalculateBalance(db, 1, "")
	require.NoError(t, err)
	assert.Equal(t, int64(150), b.Used)
	assert.Equal(t, int64(0), b.Remaining)
}

func TestDeactivateUserAllocations(t *testing.T) {
	db := setupTestDB(t)

	_, err := GrantTokens(db, 1, 500, ReasonSubscriptionGrant, nil, nil)
	require.NoError(t, err)
	_, err = GrantTokens(db, 1, 200, ReasonExtraCreditsPurchase, nil, nil)
	require.NoError(t, err)

	n, err := DeactivateUserAllocations(db, 1, "test cleanup")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// rows survive as an audit trail, flagged inactive
	var allocs []TokenAllocation
	require.NoError(t, db.Where("user_id = ?", 1).Find(&allocs).Error)
	require.Len(t, allocs, 2)
	for _, a := range allocs {
		assert.False(t, a.IsActive)
		assert.NotNil(t, a.DeactivatedAt)
		require.NotNil(t, a.DeactivationReason)
		assert.Equal(t, "test cleanup", *a.DeactivationReason)
	}

	// second run matches nothing
	n, err = DeactivateUserAllocations(db, 1, "test cleanup")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestDeactivateSubscriptionGrantsLeavesOtherReasons(t *testing.T) {
	db := setupTestDB(t)

	_, err := GrantTokens(db, 1, 500, ReasonSubscriptionGrant, nil, nil)
	require.NoError(t, err)
	_, err = GrantTokens(db, 1, 200, ReasonExtraCreditsPurchase, nil, nil)
	require.NoError(t, err)

	n, err := DeactivateSubscriptionGrants(db, 1, "replaced by new subscription grant")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	b, err := CalculateBalance(db, 1, "")
	require.NoError(t, err)
	assert.Equal(t, int64(200), b.Allocated)
}

func TestSweepExpiredAllocations(t *testing.T) {
	db := setupTestDB(t)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	_, err := GrantTokens(db, 1, 100, ReasonSubscriptionGrant, nil, &past)
	require.NoError(t, err)
	_, err = GrantTokens(db, 1, 100, ReasonSubscriptionGrant, nil, &future)
	require.NoError(t, err)
	_, err = GrantTokens(db, 1, 100, ReasonExtraCreditsPurchase, nil, nil)
	require.NoError(t, err)

	n, err := SweepExpiredAllocations(db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var active int64
	db.Model(&TokenAllocation{}).Where("user_id = ? AND is_active = ?", 1, true).Count(&active)
	assert.Equal(t, int64(2), active)
}
