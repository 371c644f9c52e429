package api

import (
	"net/http"

	"messenger-funnel/internal/store"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	Conversations *store.Conversations
}

func NewConversationHandler(conversations *store.Conversations) *ConversationHandler {
	return &ConversationHandler{Conversations: conversations}
}

// GetConversation returns every turn exchanged with one sender, oldest first.
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	senderID := c.Param("senderId")
	turns, err := h.Conversations.BySender(senderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, turns)
}
