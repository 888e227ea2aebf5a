package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/theforce-cc/proposal-backend/internal/ai"
	"github.com/theforce-cc/proposal-backend/internal/config"
	"github.com/theforce-cc/proposal-backend/internal/db"
	httpHandlers "github.com/theforce-cc/proposal-backend/internal/http/handlers"
	httpRouter "github.com/theforce-cc/proposal-backend/internal/http/router"
	"github.com/theforce-cc/proposal-backend/internal/logger"
	"github.com/theforce-cc/proposal-backend/internal/repository"
	"github.com/theforce-cc/proposal-backend/internal/service"
	"github.com/theforce-cc/proposal-backend/internal/ws"
)

func main() {
	// Contexto para graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: erro ao carregar a configuração: %v", err)
	}

	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Banco e migrações.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: erro ao conectar ao banco: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: erro nas migrações: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Repositórios.
	userRepo := repository.NewUserRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)

	// Serviços.
	authService := service.NewAuthService(userRepo, tokenManager)
	proposalService := service.NewProposalService(proposalRepo, userRepo)
	seedService := service.NewSeedService(proposalService, userRepo)
	assistant := ai.NewAssistant(ai.NewClient(cfg.AIBaseURL, cfg.AIModel))

	// Hub de eventos do dashboard.
	hub := ws.NewHub(ctx)
	go hub.Run()
	proposalService.SetHub(hub)

	// Handlers HTTP.
	authHandler := httpHandlers.NewAuthHandler(authService)
	proposalHandler := httpHandlers.NewProposalHandler(proposalService)
	aiHandler := httpHandlers.NewAIHandler(assistant)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)
	seedHandler := httpHandlers.NewSeedHandler(seedService)

	engine := httpRouter.SetupRouter(cfg, authHandler, proposalHandler, aiHandler, wsHandler, healthHandler, seedHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Encerra o servidor ao receber o sinal.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: erro ao parar o servidor http: %v", err)
		}
	}()

	log.Printf("main: servidor HTTP ouvindo na porta %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: servidor terminou com erro: %v", err)
	}
}

// safeClose fecha a conexão com o banco.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: erro ao fechar o banco: %v", err)
	}
}
