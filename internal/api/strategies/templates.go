package strategies

import (
	"encoding/json"
	"net/http"

	"github.com/RahulEdward/pinegeniev2-sub011/database"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/strategies"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// GET /templates/strategies  (public)
func ListTemplateStrategies(c *gin.Context) {
	var list []strategies.Strategy
	if err := templateStrategiesQuery(database.DB).
		Order("name ASC").
		Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load templates"})
		return
	}

	out := make([]TemplateDTO, 0, len(list))
	for i := range list {
		out = append(out, toTemplateDTO(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// POST /templates/strategies/:id/copy
func CopyTemplateToUser(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var tpl strategies.Strategy
	if err := database.DB.
		Where("id = ? AND owner_type = ?", c.Param("id"), strategies.OwnerSystem).
		First(&tpl).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	policy, err := loadPolicy(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if !policy.Can("templates") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Template access is locked. Please subscribe."})
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

	clone := strategies.Strategy{
		OwnerType:   strategies.OwnerUser,
		UserID:      &userID,
		Name:        tpl.Name,
		Description: tpl.Description,
		Graph:       tpl.Graph,
		Version:     1,
	}

	if err := database.DB.Create(&clone).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to copy template"})
		return
	}
	if err := database.DB.Create(&strategies.StrategyVersion{
		StrategyID: clone.ID,
		Version:    1,
		Graph:      clone.Graph,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to snapshot copied strategy"})
		return
	}

	c.JSON(http.StatusCreated, toStrategyDTO(&clone))
}

// POST /admin/templates/strategies
func CreateTemplateStrategy(c *gin.Context) {
	var body struct {
		Name        string          `json:"name" binding:"required"`
		Description string          `json:"description"`
		Graph       json.RawMessage `json:"graph" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := strategies.ParseGraph(body.Graph); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tpl := strategies.Strategy{
		OwnerType:   strategies.OwnerSystem,
		Name:        body.Name,
		Description: body.Description,
		Graph:       datatypes.JSON(body.Graph),
		Version:     1,
	}

	if err := database.DB.Create(&tpl).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		return
	}

	c.JSON(http.StatusCreated, toTemplateDTO(&tpl))
}
