package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sandria/chatvault/internal/api/handler"
	customMiddleware "github.com/sandria/chatvault/internal/api/middleware"
	"github.com/sandria/chatvault/internal/chat"
	"github.com/sandria/chatvault/internal/domain"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	repo domain.ConversationRepository,
	sessions *chat.SessionManager,
	messages *chat.MessageHandler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	sessionHandler := handler.NewSessionHandler(repo, sessions, messages)
	chatHandler := handler.NewChatHandler(messages, sessions)

	r.Get("/health", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", chatHandler.Send)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.List)
			r.Post("/", sessionHandler.Create)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
				r.Get("/history", sessionHandler.History)
				r.Get("/tokens", sessionHandler.Tokens)
			})
		})
	})

	return r
}
