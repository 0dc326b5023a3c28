package strategies

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/RahulEdward/pinegeniev2-sub011/database"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/access"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/strategies"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

func loadPolicy(userID uint) (access.Policy, error) {
	var user users.User
	if err := database.DB.Preload("Plan").First(&user, userID).Error; err != nil {
		return access.Policy{}, err
	}
	return access.ComputePolicy(time.Now(), user), nil
}

// GET /strategies
func ListStrategies(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var list []strategies.Strategy
	if err := userStrategiesQuery(database.DB, userID).
		Order("updated_at DESC").
		Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load strategies"})
		return
	}

	out := make([]StrategyListItemDTO, 0, len(list))
	for i := range list {
		out = append(out, toListItemDTO(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GET /strategies/:id
func GetStrategy(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	s, err := findUserStrategy(database.DB, userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		return
	}

	c.JSON(http.StatusOK, toStrategyDTO(s))
}

// POST /strategies
func CreateStrategy(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var body struct {
		Name        string          `json:"name" binding:"required"`
		Description string          `json:"description"`
		Graph       json.RawMessage `json:"graph" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	graph, err := strategies.ParseGraph(body.Graph)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	policy, err := loadPolicy(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if !policy.Can("builder") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Builder access is locked. Please subscribe."})
		return
	}
	if graph.HasPremiumNodes() && !policy.Can("premium_indicators") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Premium indicators require a Premium plan"})
		return
	}
	if policy.Limits != nil {
		var count int64
		if err := userStrategiesQuery(database.DB, userID).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check strategy count"})
			return
		}
		if count >= int64(policy.Limits.MaxStrategies) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Strategy limit reached on your current plan"})
			return
		}
	}

	s := strategies.Strategy{
		OwnerType:   strategies.OwnerUser,
		UserID:      &userID,
		Name:        body.Name,
		Description: body.Description,
		Graph:       datatypes.JSON(body.Graph),
		Version:     1,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&s).Error; err != nil {
			return err
		}
		return tx.Create(&strategies.StrategyVersion{
			StrategyID: s.ID,
			Version:    1,
			Graph:      s.Graph,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create strategy"})
		return
	}

	c.JSON(http.StatusCreated, toStrategyDTO(&s))
}

// PUT /strategies/:id
func UpdateStrategy(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var body struct {
		Name        *string         `json:"name"`
		Description *string         `json:"description"`
		Graph       json.RawMessage `json:"graph"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := findUserStrategy(database.DB, userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		return
	}

	if body.Name != nil {
		s.Name = *body.Name
	}
	if body.Description != nil {
		s.Description = *body.Description
	}

	graphChanged := len(body.Graph) > 0
	if graphChanged {
		graph, err := strategies.ParseGraph(body.Graph)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		policy, err := loadPolicy(userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		if graph.HasPremiumNodes() && !policy.Can("premium_indicators") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Premium indicators require a Premium plan"})
			return
		}

		s.Graph = datatypes.JSON(body.Graph)
		s.Version++
		// graph changed: the stored script no longer matches
		s.PineScript = ""
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(s).Error; err != nil {
			return err
		}
		if graphChanged {
			return tx.Create(&strategies.StrategyVersion{
				StrategyID: s.ID,
				Version:    s.Version,
				Graph:      s.Graph,
			}).Error
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update strategy"})
		return
	}

	c.JSON(http.StatusOK, toStrategyDTO(s))
}

// DELETE /strategies/:id
func DeleteStrategy(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	s, err := findUserStrategy(database.DB, userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("strategy_id = ?", s.ID).
			Delete(&strategies.StrategyVersion{}).Error; err != nil {
			return err
		}
		return tx.Delete(s).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete strategy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Strategy deleted"})
}

// GET /strategies/:id/versions
func ListVersions(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	s, err := findUserStrategy(database.DB, userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		return
	}

	var versions []strategies.StrategyVersion
	if err := database.DB.
		Where("strategy_id = ?", s.ID).
		Order("version DESC").
		Find(&versions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load versions"})
		return
	}

	out := make([]VersionDTO, 0, len(versions))
	for _, v := range versions {
		out = append(out, VersionDTO{Version: v.Version, CreatedAt: v.CreatedAt})
	}
	c.JSON(http.StatusOK, out)
}

// POST /strategies/:id/versions/:version/restore
//
// Restoring creates a NEW version with the old graph; history is never
// rewritten.
func RestoreVersion(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	s, err := findUserStrategy(database.DB, userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		return
	}

	var snapshot strategies.StrategyVersion
	if err := database.DB.
		Where("strategy_id = ? AND version = ?", s.ID, c.Param("version")).
		First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Version not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load version"})
		return
	}

	s.Graph = snapshot.Graph
	s.PineScript = snapshot.PineScript
	s.Version++

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(s).Error; err != nil {
			return err
		}
		return tx.Create(&strategies.StrategyVersion{
			StrategyID: s.ID,
			Version:    s.Version,
			Graph:      s.Graph,
			PineScript: s.PineScript,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore version"})
		return
	}

	c.JSON(http.StatusOK, toStrategyDTO(s))
}

// POST /strategies/:id/publish
func PublishStrategy(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	s, err := findUserStrategy(database.DB, userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		return
	}

	slug, err := strategies.EnsureShareSlug(database.DB, s)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate share slug"})
		return
	}

	if err := database.DB.Model(s).Update("is_public", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish strategy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Strategy published", "share_slug": slug})
}

// POST /strategies/:id/unpublish
func UnpublishStrategy(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	s, err := findUserStrategy(database.DB, userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		return
	}

	if err := database.DB.Model(s).Update("is_public", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unpublish strategy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Strategy unpublished"})
}

// GET /shared/:slug  (public, no auth)
func GetSharedStrategy(c *gin.Context) {
	slug := c.Param("slug")

	var s strategies.Strategy
	if err := database.DB.
		Where("share_slug = ? AND is_public = ?", slug, true).
		First(&s).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shared strategy not found"})
		return
	}

	c.JSON(http.StatusOK, toStrategyDTO(&s))
}
