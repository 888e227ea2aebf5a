package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theforce-cc/proposal-backend/internal/service"
)

// SeedHandler expõe o seed de dados de exemplo (apenas desenvolvimento).
type SeedHandler struct {
	seed *service.SeedService
}

// NewSeedHandler cria o handler.
func NewSeedHandler(seed *service.SeedService) *SeedHandler {
	return &SeedHandler{seed: seed}
}

// Seed trata POST /api/seed.
func (h *SeedHandler) Seed(c *gin.Context) {
	created, err := h.seed.Seed(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"created": created,
	})
}
