package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCreateGeneratesIDsViaHook(t *testing.T) {
	db := setupSlugDB(t)

	uid := uint(1)
	s := Strategy{OwnerType: OwnerUser, UserID: &uid, Name: "Hooked", Graph: datatypes.JSON(`{}`)}
	require.NoError(t, db.Create(&s).Error)
	assert.NotEmpty(t, s.ID)

	v := StrategyVersion{StrategyID: s.ID, Version: 1, Graph: datatypes.JSON(`{}`)}
	require.NoError(t, db.Create(&v).Error)
	assert.NotEmpty(t, v.ID)

	var stored StrategyVersion
	require.NoError(t, db.First(&stored, "id = ?", v.ID).Error)
	assert.Equal(t, s.ID, stored.StrategyID)
}
