package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gemchat-backend/internal/config"
	"gemchat-backend/internal/database"
	"gemchat-backend/internal/handlers"
	"gemchat-backend/internal/middleware"
	"gemchat-backend/internal/repository"
	"gemchat-backend/internal/router"
	"gemchat-backend/internal/services"
	"gemchat-backend/internal/session"
	"gemchat-backend/internal/websocket"
)

const (
	sessionTokenTTL = 24 * time.Hour
	janitorInterval = 5 * time.Minute
)

func main() {
	log.Println("🚀 Starting Gemini Chat Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("✗ Configuration error: %v", err)
	}
	log.Println("✓ Environment variables loaded")

	if cfg.SessionSecret == "" {
		secret, err := services.RandomSecret(32)
		if err != nil {
			log.Fatalf("✗ Failed to generate session secret: %v", err)
		}
		cfg.SessionSecret = secret
		log.Println("⚠ SESSION_SECRET not set; using a random secret (tokens will not survive restarts)")
	}

	// ──── Step 2: Optional PostgreSQL for stored exports ────
	var exportService *services.ExportService
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		log.Println("✓ PostgreSQL connected")

		if err := database.RunMigrations(pool); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		log.Println("✓ Database migrations applied")

		exportService = services.NewExportService(repository.NewExportRepo(pool))
	} else {
		exportService = services.NewExportService(nil)
		log.Println("• DATABASE_URL not set; exports are download-only")
	}

	// ──── Step 3: Optional Redis for event fan-out ────
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClient.Close()
		log.Println("✓ Redis connected")
	} else {
		log.Println("• REDIS_URL not set; live events are delivered in-process")
	}

	// ──── Step 4: Initialize Completion Client ────
	var completer services.Completer
	switch cfg.CompletionProvider {
	case config.ProviderOpenAI:
		openAIService := services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.CompletionTimeout)
		completer = openAIService
		log.Printf("✓ OpenAI-compatible client initialized (model: %s)", openAIService.ModelName())
	default:
		geminiService, err := services.NewGeminiService(
			cfg.GeminiAPIKey,
			cfg.GeminiModel,
			cfg.GeminiConcurrentReqs,
			cfg.CompletionTimeout,
		)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer geminiService.Close()
		completer = geminiService
		log.Printf("✓ Gemini client initialized (model: %s)", geminiService.ModelName())
	}

	// ──── Step 5: Sessions ────
	sessionManager := session.NewManager(cfg.SessionIdleTimeout)
	sessionManager.OnDestroy(func(id uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		exportService.Purge(ctx, id)
	})
	sessionManager.StartJanitor(janitorInterval)
	log.Printf("✓ Session manager started (idle timeout: %s)", cfg.SessionIdleTimeout)

	sessionAuth := middleware.NewSessionAuth(cfg.SessionSecret, sessionTokenTTL, sessionManager)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClient, sessionAuth, sessionManager)
	log.Println("✓ WebSocket hub started")

	// ──── Initialize Services & Handlers ────
	chatService := services.NewChatService(completer, wsHub)
	sessionService := services.NewSessionService(sessionManager, sessionAuth, cfg.PassphraseHash)

	sessionHandler := handlers.NewSessionHandler(sessionService)
	chatHandler := handlers.NewChatHandler(chatService)
	exportHandler := handlers.NewExportHandler(exportService)

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		sessionAuth,
		limiter,
		sessionHandler,
		chatHandler,
		exportHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // completions can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		sessionManager.Stop()
		limiter.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Gemini Chat Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
