package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theforce-cc/proposal-backend/internal/ai"
)

// AIHandler encaminha a conversa do editor para o assistente.
type AIHandler struct {
	assistant *ai.Assistant
}

// NewAIHandler cria o handler.
func NewAIHandler(assistant *ai.Assistant) *AIHandler {
	return &AIHandler{assistant: assistant}
}

// Chat trata POST /api/ai/chat. O assistente é fail-soft: falha do
// upstream devolve a resposta neutra, nunca erro HTTP.
func (h *AIHandler) Chat(c *gin.Context) {
	var req struct {
		Messages []ai.Message   `json:"messages" binding:"required"`
		Context  ai.ChatContext `json:"context"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply := h.assistant.Respond(c.Request.Context(), req.Messages, req.Context)
	c.JSON(http.StatusOK, reply)
}
