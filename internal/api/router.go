package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rrens/chat-widget/internal/api/handler"
	customMiddleware "github.com/Rrens/chat-widget/internal/api/middleware"
	"github.com/Rrens/chat-widget/internal/attachment"
	"github.com/Rrens/chat-widget/internal/config"
	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/events"
	"github.com/Rrens/chat-widget/internal/llm"
	"github.com/Rrens/chat-widget/internal/service"
)

// Dependencies are the components the HTTP surface is built on
type Dependencies struct {
	Config      *config.Config
	Chat        *service.ChatService
	Attachments *attachment.Store
	Broadcaster *events.Broadcaster
	LLM         *llm.Router
	Storage     handler.Pinger
	Limiter     customMiddleware.Limiter
	Locale      domain.Locale
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize handlers
	conversationHandler := handler.NewConversationHandler(deps.Chat, deps.Attachments, cfg.Upload.MaxSize)
	attachmentHandler := handler.NewAttachmentHandler(deps.Attachments, deps.Chat)
	eventsHandler := handler.NewEventsHandler(deps.Broadcaster)
	backendHandler := handler.NewBackendHandler(deps.Locale, cfg.Upload.MaxSize)

	limit := func(next http.Handler) http.Handler { return next }
	if deps.Limiter != nil && cfg.Security.RateLimit.Enabled {
		limit = customMiddleware.NewRateLimitMiddleware(deps.Limiter).Limit
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.Storage))

		// Server-sent events are long-lived and skip the request timeout
		r.Get("/events", eventsHandler.Stream)

		r.Group(func(r chi.Router) {
			if cfg.Server.MiddlewareTimeout > 0 {
				r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
			}

			r.Get("/llm-providers", handler.ListLLMProviders(deps.LLM))

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", conversationHandler.List)
				r.Post("/", conversationHandler.Create)

				r.Get("/active", conversationHandler.GetActive)
				r.Put("/active", conversationHandler.SetActive)

				r.Route("/{conversationID}", func(r chi.Router) {
					r.Get("/", conversationHandler.Get)
					r.Patch("/", conversationHandler.Rename)
					r.Delete("/", conversationHandler.Delete)
					r.Get("/export", conversationHandler.Export)
					r.With(limit).Post("/messages", conversationHandler.SendMessage)
				})
			})

			r.Route("/attachments", func(r chi.Router) {
				r.With(limit).Post("/", attachmentHandler.Upload)
				r.Get("/{attachmentID}", attachmentHandler.Download)
				r.Delete("/{attachmentID}", attachmentHandler.Delete)
			})

			// Reference assistant backend
			r.With(limit).Post("/chat", backendHandler.Chat)
		})
	})

	return r
}
