package router

import (
	"github.com/gin-gonic/gin"

	"github.com/theforce-cc/proposal-backend/internal/config"
	"github.com/theforce-cc/proposal-backend/internal/http/handlers"
	"github.com/theforce-cc/proposal-backend/internal/http/middleware"
	"github.com/theforce-cc/proposal-backend/internal/service"
)

// SetupRouter monta todas as rotas da aplicação.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	proposalHandler *handlers.ProposalHandler,
	aiHandler *handlers.AIHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	seedHandler *handlers.SeedHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	if seedHandler != nil && cfg.Env == "development" {
		api.POST("/seed", seedHandler.Seed)
		api.GET("/seed", seedHandler.Seed)
	}

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	// Rotas públicas: a leitura do cliente final dispara o rastreamento
	// de visualização, e o dashboard conecta por token na query.
	api.GET("/proposals/public/:slug", proposalHandler.GetPublic)
	api.GET("/ws", wsHandler.Handle)

	// Rotas da equipe.
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/proposals", proposalHandler.List)
		protected.POST("/proposals", proposalHandler.Create)
		protected.GET("/proposals/:id", proposalHandler.Get)
		protected.PUT("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.Update)
		protected.DELETE("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.Delete)

		aiGroup := protected.Group("/ai")
		aiGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
		aiGroup.POST("/chat", aiHandler.Chat)
	}

	return r
}
