package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/theforce-cc/proposal-backend/internal/logger"
	"github.com/theforce-cc/proposal-backend/internal/pkg/apperror"
)

// ErrorHandler centraliza o tratamento de erros anexados ao contexto.
// Erros de aplicação saem com o status e a mensagem próprios; o resto é
// mascarado como erro interno, com a causa apenas no log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("erro na requisição")
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			body := gin.H{"error": appErr.Message}
			// Falhas de persistência levam a causa para diagnóstico do
			// operador, sem mascarar para códigos 5xx.
			if appErr.HTTPStatus >= http.StatusInternalServerError && appErr.Cause != nil {
				body["details"] = appErr.Cause.Error()
			}
			c.JSON(appErr.HTTPStatus, body)
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": "erro interno do servidor"})
	}
}
