package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/theforce-cc/proposal-backend/internal/http/middleware"
	"github.com/theforce-cc/proposal-backend/internal/models"
	"github.com/theforce-cc/proposal-backend/internal/pkg/apperror"
)

var errUserNotInContext = errors.New("usuário não encontrado no contexto")

// currentUserID extrai o userID do contexto autenticado.
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, errUserNotInContext
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, errUserNotInContext
	}

	return userID, nil
}

// currentUserRole extrai o papel do usuário do contexto autenticado.
func currentUserRole(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextRoleKey)
	if !exists {
		return "", errUserNotInContext
	}

	role, ok := raw.(string)
	if !ok {
		return "", errUserNotInContext
	}

	return role, nil
}

// requireWriter bloqueia escritas para o papel viewer.
func requireWriter(c *gin.Context) error {
	role, err := currentUserRole(c)
	if err == nil && role == models.RoleViewer {
		return apperror.New(apperror.ErrCodeForbidden, "o papel viewer não pode alterar propostas")
	}
	return nil
}
