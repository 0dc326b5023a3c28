package strategies

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSlugDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Strategy{}, &StrategyVersion{}))
	return db
}

func TestEnsureShareSlugGeneratesAndPersists(t *testing.T) {
	db := setupSlugDB(t)

	uid := uint(1)
	s := Strategy{OwnerType: OwnerUser, UserID: &uid, Name: "RSI Mean Reversion", Graph: datatypes.JSON(`{}`)}
	require.NoError(t, db.Create(&s).Error)

	slug, err := EnsureShareSlug(db, &s)
	require.NoError(t, err)
	assert.Equal(t, "rsi-mean-reversion", slug)

	var stored Strategy
	require.NoError(t, db.First(&stored, "id = ?", s.ID).Error)
	require.NotNil(t, stored.ShareSlug)
	assert.Equal(t, slug, *stored.ShareSlug)
}

func TestEnsureShareSlugResolvesCollisions(t *testing.T) {
	db := setupSlugDB(t)

	uid := uint(1)
	first := Strategy{OwnerType: OwnerUser, UserID: &uid, Name: "Golden Cross", Graph: datatypes.JSON(`{}`)}
	require.NoError(t, db.Create(&first).Error)
	_, err := EnsureShareSlug(db, &first)
	require.NoError(t, err)

	second := Strategy{OwnerType: OwnerUser, UserID: &uid, Name: "Golden Cross", Graph: datatypes.JSON(`{}`)}
	require.NoError(t, db.Create(&second).Error)
	slug, err := EnsureShareSlug(db, &second)
	require.NoError(t, err)
	assert.Equal(t, "golden-cross-2", slug)
}

func TestEnsureShareSlugIsStable(t *testing.T) {
	db := setupSlugDB(t)

	uid := uint(1)
	s := Strategy{OwnerType: OwnerUser, UserID: &uid, Name: "Scalper", Graph: datatypes.JSON(`{}`)}
	require.NoError(t, db.Create(&s).Error)

	firstSlug, err := EnsureShareSlug(db, &s)
	require.NoError(t, err)

	againSlug, err := EnsureShareSlug(db, &s)
	require.NoError(t, err)
	assert.Equal(t, firstSlug, againSlug)
}
