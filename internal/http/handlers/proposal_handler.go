package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/theforce-cc/proposal-backend/internal/models"
	"github.com/theforce-cc/proposal-backend/internal/service"
)

// ProposalHandler expõe o CRUD de propostas e a leitura pública.
type ProposalHandler struct {
	proposals *service.ProposalService
}

// NewProposalHandler cria o handler.
func NewProposalHandler(proposals *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals}
}

// List trata GET /api/proposals.
func (h *ProposalHandler) List(c *gin.Context) {
	proposals, err := h.proposals.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, proposals)
}

// Create trata POST /api/proposals.
func (h *ProposalHandler) Create(c *gin.Context) {
	if err := requireWriter(c); err != nil {
		_ = c.Error(err)
		return
	}

	var req struct {
		Name     string         `json:"name"`
		Client   string         `json:"client"`
		ClientID *uuid.UUID     `json:"client_id"`
		Value    float64        `json:"value"`
		Content  map[string]any `json:"content_json"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.CreateProposalInput{
		Name:     req.Name,
		Client:   req.Client,
		ClientID: req.ClientID,
		Value:    req.Value,
		Content:  req.Content,
	}

	// Quando autenticado, o autor é o usuário da sessão; sem sessão o
	// serviço recai na identidade sistema.
	if userID, err := currentUserID(c); err == nil {
		input.CreatedBy = &userID
	}

	proposal, err := h.proposals.Create(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"proposal": proposal,
		"url":      "/proposals/" + proposal.Slug,
		"edit_url": "/proposals/" + proposal.Slug + "/edit",
	})
}

// Get trata GET /api/proposals/:id (id ou slug).
func (h *ProposalHandler) Get(c *gin.Context) {
	proposal, err := h.proposals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// GetPublic trata GET /api/proposals/public/:slug — o caminho de leitura
// do cliente final, com rastreamento de visualização e conteúdo resolvido.
func (h *ProposalHandler) GetPublic(c *gin.Context) {
	proposal, err := h.proposals.GetPublicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// Update trata PUT /api/proposals/:id.
func (h *ProposalHandler) Update(c *gin.Context) {
	if err := requireWriter(c); err != nil {
		_ = c.Error(err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return
	}

	var req struct {
		Name     *string                `json:"name"`
		Client   *string                `json:"client"`
		ClientID *uuid.UUID             `json:"client_id"`
		Value    *float64               `json:"value"`
		Status   *models.ProposalStatus `json:"status"`
		Content  map[string]any         `json:"content_json"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposals.Update(c.Request.Context(), id, service.UpdateProposalInput{
		Name:     req.Name,
		Client:   req.Client,
		ClientID: req.ClientID,
		Value:    req.Value,
		Status:   req.Status,
		Content:  req.Content,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// Delete trata DELETE /api/proposals/:id.
func (h *ProposalHandler) Delete(c *gin.Context) {
	if err := requireWriter(c); err != nil {
		_ = c.Error(err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return
	}

	if err := h.proposals.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
