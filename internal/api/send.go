package api

import (
	"net/http"

	"messenger-funnel/internal/bot"
	"messenger-funnel/internal/models"
	"messenger-funnel/internal/store"

	"github.com/gin-gonic/gin"
)

// SendHandler lets the merchant jump into a conversation manually from the
// dashboard. Sent messages are logged as assistant turns.
type SendHandler struct {
	Sender        bot.Sender
	Conversations *store.Conversations
}

func NewSendHandler(sender bot.Sender, conversations *store.Conversations) *SendHandler {
	return &SendHandler{Sender: sender, Conversations: conversations}
}

type SendRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Text        string `json:"text" binding:"required"`
}

func (h *SendHandler) SendMessage(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Sender.SendText(req.RecipientID, req.Text); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.Conversations.Append(req.RecipientID, "", models.RoleAssistant, req.Text); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Message sent"})
}
