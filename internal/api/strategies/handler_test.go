package strategies

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RahulEdward/pinegeniev2-sub011/database"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/plans"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/strategies"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const simpleGraphJSON = `{
	"nodes": [
		{"id": "rsi1", "type": "indicator", "kind": "rsi"},
		{"id": "cond1", "type": "condition", "kind": "less_than", "params": {"value": "30"}},
		{"id": "buy1", "type": "action", "kind": "buy"}
	],
	"connections": [
		{"from": "rsi1", "to": "cond1"},
		{"from": "cond1", "to": "buy1"}
	]
}`

func setupHandlerDB(t *testing.T, models ...interface{}) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models...))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	return db
}

func postJSON(t *testing.T, userID uint, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", userID)
	return c, w
}

func TestCreateStrategyEnforcesPlanLimit(t *testing.T) {
	db := setupHandlerDB(t,
		&plans.Plan{}, &users.User{},
		&strategies.Strategy{}, &strategies.StrategyVersion{},
	)

	// No subscription: limited access, three strategies max
	u := users.User{Name: "Lim", Lastname: "Ited", Email: "limited@test.dev", Role: "user", IsVerified: true}
	require.NoError(t, db.Create(&u).Error)

	for i := 0; i < 3; i++ {
		s := strategies.Strategy{
			OwnerType: strategies.OwnerUser,
			UserID:    &u.ID,
			Name:      fmt.Sprintf("Existing %d", i+1),
			Graph:     datatypes.JSON(`{}`),
			Version:   1,
		}
		require.NoError(t, db.Create(&s).Error)
	}

	body := fmt.Sprintf(`{"name": "One Too Many", "graph": %s}`, simpleGraphJSON)
	c, w := postJSON(t, u.ID, "/strategies", body)
	CreateStrategy(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Strategy limit reached")

	var count int64
	db.Model(&strategies.Strategy{}).Where("user_id = ?", u.ID).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestCreateStrategyUnderLimitSucceeds(t *testing.T) {
	db := setupHandlerDB(t,
		&plans.Plan{}, &users.User{},
		&strategies.Strategy{}, &strategies.StrategyVersion{},
	)

	u := users.User{Name: "New", Lastname: "User", Email: "new@test.dev", Role: "user", IsVerified: true}
	require.NoError(t, db.Create(&u).Error)

	body := fmt.Sprintf(`{"name": "First Strategy", "graph": %s}`, simpleGraphJSON)
	c, w := postJSON(t, u.ID, "/strategies", body)
	CreateStrategy(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var versions int64
	db.Model(&strategies.StrategyVersion{}).Count(&versions)
	assert.Equal(t, int64(1), versions)
}

func TestCreateStrategyCountFailureDoesNotBypassLimit(t *testing.T) {
	// Strategies table missing: the limit check cannot run, so creation
	// must fail instead of waving the request through.
	db := setupHandlerDB(t, &plans.Plan{}, &users.User{})

	u := users.User{Name: "Broken", Lastname: "DB", Email: "broken@test.dev", Role: "user", IsVerified: true}
	require.NoError(t, db.Create(&u).Error)

	body := fmt.Sprintf(`{"name": "Should Fail", "graph": %s}`, simpleGraphJSON)
	c, w := postJSON(t, u.ID, "/strategies", body)
	CreateStrategy(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
