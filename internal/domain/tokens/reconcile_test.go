package tokens

import (
	"fmt"
	"testing"

	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/plans"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupReconcileDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&plans.Plan{}, &users.User{}, &TokenAllocation{}, &TokenUsageLog{},
	))
	return db
}

func strPtr(s string) *string { return &s }

func createUser(t *testing.T, db *gorm.DB, email string, planID *uint, subID, status *string) users.User {
	u := users.User{
		Name:                     "Test",
		Lastname:                 "User",
		Email:                    email,
		Role:                     "user",
		IsVerified:               true,
		PlanID:                   planID,
		SubscriptionId:           subID,
		StripeSubscriptionStatus: status,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createPlan(t *testing.T, db *gorm.DB, name, tier string, price float64) plans.Plan {
	p := plans.Plan{
		Name:          name,
		PriceUSD:      price,
		StripePriceID: "price_" + name,
		Interval:      "month",
		Tier:          tier,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestIsFreeTier(t *testing.T) {
	pro := plans.Plan{Tier: plans.TierPro, PriceUSD: 19}
	free := plans.Plan{Tier: plans.TierFree}

	cases := []struct {
		name string
		user users.User
		want bool
	}{
		{"no subscription", users.User{}, true},
		{"active pro", users.User{SubscriptionId: strPtr("sub_1"), StripeSubscriptionStatus: strPtr("active"), Plan: &pro}, false},
		{"trialing pro", users.User{SubscriptionId: strPtr("sub_2"), StripeSubscriptionStatus: strPtr("trialing"), Plan: &pro}, false},
		{"canceled pro", users.User{SubscriptionId: strPtr("sub_3"), StripeSubscriptionStatus: strPtr("canceled"), Plan: &pro}, true},
		{"past due pro", users.User{SubscriptionId: strPtr("sub_4"), StripeSubscriptionStatus: strPtr("past_due"), Plan: &pro}, true},
		{"active free plan", users.User{SubscriptionId: strPtr("sub_5"), StripeSubscriptionStatus: strPtr("active"), Plan: &free}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsFreeTier(&tc.user))
		})
	}
}

func TestReconcileFreeTierDeactivatesLeftoverGrants(t *testing.T) {
	db := setupReconcileDB(t)

	pro := createPlan(t, db, "pro", plans.TierPro, 19)

	// downgraded: plan row still set, but subscription canceled
	downgraded := createUser(t, db, "down@test.dev", &pro.ID, strPtr("sub_old"), strPtr("canceled"))
	_, err := GrantTokens(db, downgraded.ID, 50, ReasonSubscriptionGrant, nil, nil)
	require.NoError(t, err)
	require.NoError(t, RecordUsage(db, downgraded.ID, 10, RequestAIChat, "conv-1"))

	// paying user, must not be touched
	paying := createUser(t, db, "pay@test.dev", &pro.ID, strPtr("sub_live"), strPtr("active"))
	_, err = GrantTokens(db, paying.ID, 500, ReasonSubscriptionGrant, nil, nil)
	require.NoError(t, err)

	report, err := ReconcileFreeTier(db)
	require.NoError(t, err)

	assert.Equal(t, 2, report.UsersScanned)
	assert.Equal(t, 1, report.FreeTierUsers)
	assert.Equal(t, 1, report.UsersReconciled)
	assert.Equal(t, int64(1), report.AllocationsDeactivated)
	assert.Empty(t, report.Errors)

	// downgraded user's balance hits zero, paying user keeps theirs
	b, err := CalculateBalance(db, downgraded.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Allocated)

	pb, err := CalculateBalance(db, paying.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(500), pb.Allocated)

	// usage history is never touched
	var usageCount int64
	db.Model(&TokenUsageLog{}).Where("user_id = ?", downgraded.ID).Count(&usageCount)
	assert.Equal(t, int64(1), usageCount)

	// allocation row survives, soft-deactivated
	var alloc TokenAllocation
	require.NoError(t, db.Where("user_id = ?", downgraded.ID).First(&alloc).Error)
	assert.False(t, alloc.IsActive)
	require.NotNil(t, alloc.DeactivationReason)
	assert.Equal(t, "plan downgraded to free tier", *alloc.DeactivationReason)
}

func TestReconcileFreeTierLeavesPurchasedCredits(t *testing.T) {
	db := setupReconcileDB(t)

	// Free-tier user who bought a credit pack and got a welcome bonus.
	u := createUser(t, db, "buyer@test.dev", nil, nil, nil)
	_, err := GrantTokens(db, u.ID, 2_000_000, ReasonExtraCreditsPurchase, nil, nil)
	require.NoError(t, err)
	_, err = GrantTokens(db, u.ID, 10_000, ReasonSignupBonus, nil, nil)
	require.NoError(t, err)
	_, err = GrantTokens(db, u.ID, 50, ReasonSubscriptionGrant, nil, nil)
	require.NoError(t, err)

	report, err := ReconcileFreeTier(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.AllocationsDeactivated)

	// Only the plan grant is retired; paid and bonus credits stay spendable.
	paid, err := CalculateBalance(db, u.ID, ReasonExtraCreditsPurchase)
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000), paid.Allocated)

	total, err := CalculateBalance(db, u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2_010_000), total.Allocated)

	var retired TokenAllocation
	require.NoError(t, db.Where("user_id = ? AND is_active = ?", u.ID, false).First(&retired).Error)
	assert.Equal(t, ReasonSubscriptionGrant, retired.Reason)
}

func TestReconcileFreeTierIsIdempotent(t *testing.T) {
	db := setupReconcileDB(t)

	u := createUser(t, db, "free@test.dev", nil, nil, nil)
	_, err := GrantTokens(db, u.ID, 50, ReasonSubscriptionGrant, nil, nil)
	require.NoError(t, err)

	first, err := ReconcileFreeTier(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.AllocationsDeactivated)

	second, err := ReconcileFreeTier(db)
	require.NoError(t, err)
	assert.Equal(t, 1, second.FreeTierUsers)
	assert.Equal(t, 0, second.UsersReconciled)
	assert.Equal(t, int64(0), second.AllocationsDeactivated)
}

func TestReconcileFreeTierSkipsUsersWithNoAllocations(t *testing.T) {
	db := setupReconcileDB(t)

	createUser(t, db, "empty@test.dev", nil, nil, nil)

	report, err := ReconcileFreeTier(db)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FreeTierUsers)
	assert.Equal(t, 0, report.UsersReconciled)
}
