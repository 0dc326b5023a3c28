package chat

import (
	"net/http"
	"sync"

	"github.com/RahulEdward/pinegeniev2-sub011/config"
	"github.com/RahulEdward/pinegeniev2-sub011/database"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/chat"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/tokens"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/infra/ai"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	aiClient *ai.Client
	aiOnce   sync.Once
)

func client() *ai.Client {
	aiOnce.Do(func() {
		aiClient = ai.NewClient(ai.Config{
			APIKey: config.OPENAI_API_KEY,
			Model:  config.OPENAI_MODEL,
		})
	})
	return aiClient
}

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

// GET /chat/conversations
func ListConversations(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var conversations []chat.Conversation
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&conversations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversations"})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// POST /chat/conversations
func CreateConversation(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var body struct {
		Title string `json:"title"`
	}
	_ = c.ShouldBindJSON(&body)
	if body.Title == "" {
		body.Title = "New strategy chat"
	}

	conv := chat.Conversation{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  body.Title,
	}
	if err := database.DB.Create(&conv).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}

	c.JSON(http.StatusCreated, conv)
}

// GET /chat/conversations/:id
func GetConversation(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var conv chat.Conversation
	if err := database.DB.
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&conv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	c.JSON(http.StatusOK, conv)
}

// DELETE /chat/conversations/:id
func DeleteConversation(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var conv chat.Conversation
	if err := database.DB.
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&conv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conv.ID).Delete(&chat.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&conv).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted"})
}

// POST /chat/conversations/:id/messages
//
// The user message is stored, the full history goes to the model, and
// the provider-reported token count is appended to the usage log after
// the fact. The RequireTokenBalance middleware keeps callers with an
// empty balance out; a final overshoot is absorbed by the clamp to zero.
func PostMessage(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var body struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing message content"})
		return
	}

	var conv chat.Conversation
	if err := database.DB.
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&conv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	userMsg := chat.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Role:           chat.RoleUser,
		Content:        body.Content,
	}
	if err := database.DB.Create(&userMsg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store message"})
		return
	}

	history := make([]ai.ChatMessage, 0, len(conv.Messages)+1)
	for _, m := range conv.Messages {
		history = append(history, ai.ChatMessage{Role: m.Role, Content: m.Content})
	}
	history = append(history, ai.ChatMessage{Role: chat.RoleUser, Content: body.Content})

	completion, err := client().Chat(c.Request.Context(), history)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant is unavailable, please retry"})
		return
	}

	assistantMsg := chat.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Role:           chat.RoleAssistant,
		Content:        completion.Content,
		TokensUsed:     completion.TokensUsed,
	}
	if err := database.DB.Create(&assistantMsg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store assistant reply"})
		return
	}

	if completion.TokensUsed > 0 {
		if err := tokens.RecordUsage(database.DB, userID, completion.TokensUsed, tokens.RequestAIChat, conv.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record token usage"})
			return
		}
	}

	// bump updated_at so the conversation sorts to the top
	_ = database.DB.Model(&conv).Update("title", conv.Title).Error

	c.JSON(http.StatusOK, gin.H{
		"message":     assistantMsg,
		"tokens_used": completion.TokensUsed,
	})
}
