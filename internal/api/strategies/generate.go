package strategies

import (
	"errors"
	"net/http"

	"github.com/RahulEdward/pinegeniev2-sub011/config"
	"github.com/RahulEdward/pinegeniev2-sub011/database"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/strategies"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/tokens"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// POST /strategies/:id/generate
//
// Compiles the node graph to Pine Script. The fixed token cost is
// debited atomically before the script is stored; a concurrent request
// on an empty balance gets 402, never a negative balance.
func GeneratePineScript(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	s, err := findUserStrategy(database.DB, userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		return
	}

	graph, err := strategies.ParseGraph(s.Graph)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	policy, err := loadPolicy(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if !policy.Can("export_pine") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Pine Script export requires a paid plan"})
		return
	}
	if graph.HasPremiumNodes() && !policy.Can("premium_indicators") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Premium indicators require a Premium plan"})
		return
	}

	cost := config.SCRIPT_GENERATION_COST
	if err := tokens.SpendTokens(database.DB, userID, cost, tokens.RequestScriptGeneration, s.ID); err != nil {
		if errors.Is(err, tokens.ErrInsufficientBalance) {
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":     "Not enough tokens",
				"required":  cost,
				"remaining": 0,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to debit tokens"})
		return
	}

	script, err := strategies.GeneratePineScript(s.Name, graph)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(s).Update("pine_script", script).Error; err != nil {
			return err
		}
		return tx.Model(&strategies.StrategyVersion{}).
			Where("strategy_id = ? AND version = ?", s.ID, s.Version).
			Update("pine_script", script).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store generated script"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pine_script": script,
		"tokens_used": cost,
	})
}
