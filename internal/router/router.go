package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gr1shq/showdesk/internal/handlers"
	"github.com/gr1shq/showdesk/internal/middleware"
)

func New(
	analyzeHandler *handlers.AnalyzeHandler,
	chatHandler *handlers.ChatHandler,
	sessionHandler *handlers.SessionHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Analyze triggers transcript fetch + multiple model calls
	analyzeLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Service banner
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"SHOWDESK API is running!","version":"2.0","features":["content_analysis","chat","suggestions"],"status":"ready"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(analyzeLimiter.Middleware)
			r.Post("/analyze-content", analyzeHandler.AnalyzeContent)
		})

		r.Post("/chat", chatHandler.Chat)
		r.Post("/generate-suggestions", chatHandler.GenerateSuggestions)

		r.Route("/session/{id}", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Get("/history", sessionHandler.GetHistory)
			r.Delete("/", sessionHandler.DeleteSession)
		})
	})

	return r
}
