package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gr1shq/showdesk/internal/config"
	"github.com/gr1shq/showdesk/internal/database"
	"github.com/gr1shq/showdesk/internal/handlers"
	"github.com/gr1shq/showdesk/internal/logger"
	"github.com/gr1shq/showdesk/internal/repository"
	"github.com/gr1shq/showdesk/internal/router"
	"github.com/gr1shq/showdesk/internal/services"
)

func main() {
	log := logger.New()
	log.Info("Starting SHOWDESK backend...")

	cfg := config.Load()
	log.Info("Environment variables loaded")

	// ──── Session store backend ────
	var store repository.SessionStore
	switch cfg.SessionStore {
	case "redis":
		client, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("Redis connection failed")
		}
		defer client.Close()
		store = repository.NewRedisSessionStore(client)
		log.Info("Redis session store connected")
	case "postgres":
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("PostgreSQL connection failed")
		}
		defer pool.Close()

		pgStore := repository.NewPostgresSessionStore(pool)
		if err := pgStore.EnsureSchema(context.Background()); err != nil {
			log.WithError(err).Fatal("Database schema setup failed")
		}
		store = pgStore
		log.Info("PostgreSQL session store connected")
	default:
		store = repository.NewMemorySessionStore()
		log.Info("In-memory session store initialized")
	}

	// ──── Gemini client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs, log)
	if err != nil {
		log.WithError(err).Fatal("Gemini client initialization failed")
	}
	defer geminiService.Close()
	log.Info("Gemini Flash client initialized")

	// ──── Services ────
	youtubeService := services.NewYouTubeService(log)
	subjectClassifier := services.NewSubjectClassifier(geminiService, log)
	suggestionService := services.NewSuggestionService(geminiService, log)
	tutorService := services.NewTutorService(
		geminiService,
		geminiService,
		youtubeService,
		subjectClassifier,
		suggestionService,
		store,
		log,
	)

	// ──── Handlers & router ────
	analyzeHandler := handlers.NewAnalyzeHandler(tutorService)
	chatHandler := handlers.NewChatHandler(tutorService)
	sessionHandler := handlers.NewSessionHandler(tutorService)

	r := router.New(analyzeHandler, chatHandler, sessionHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Infof("SHOWDESK backend ready on http://localhost:%s", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.WithError(err).Fatal("Server error")
	}
}
