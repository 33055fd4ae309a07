package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-widget/internal/api"
	"github.com/Rrens/chat-widget/internal/api/middleware"
	"github.com/Rrens/chat-widget/internal/attachment"
	"github.com/Rrens/chat-widget/internal/config"
	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/events"
	"github.com/Rrens/chat-widget/internal/llm"
	"github.com/Rrens/chat-widget/internal/llm/anthropic"
	"github.com/Rrens/chat-widget/internal/llm/backend"
	"github.com/Rrens/chat-widget/internal/llm/deepseek"
	"github.com/Rrens/chat-widget/internal/llm/echo"
	"github.com/Rrens/chat-widget/internal/llm/gemini"
	"github.com/Rrens/chat-widget/internal/llm/ollama"
	"github.com/Rrens/chat-widget/internal/llm/openai"
	"github.com/Rrens/chat-widget/internal/logging"
	"github.com/Rrens/chat-widget/internal/repository"
	"github.com/Rrens/chat-widget/internal/repository/redis"
	"github.com/Rrens/chat-widget/internal/service"
	"github.com/Rrens/chat-widget/internal/store"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	envLoaded := ""
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			envLoaded = p
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logCloser, err := logging.Setup(cfg.Logging, cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if envLoaded != "" {
		log.Debug().Str("path", envLoaded).Msg("Loaded .env")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Driver).
		Str("provider", cfg.Assistant.Provider).
		Msg("Starting chat widget server")

	ctx := context.Background()

	// Initialize storage
	slot, err := repository.DefaultRegistry().Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer slot.Close()

	locale := domain.LocaleFor(cfg.Assistant.Language)

	attachments, err := attachment.NewStore(cfg.Upload)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize attachment storage")
	}

	// Initialize assistant providers
	llmRouter := llm.NewRouter(cfg.Assistant.Provider, cfg.Assistant.Model)
	llmRouter.RegisterProvider(echo.NewProvider(locale))
	llmRouter.RegisterProvider(backend.NewProvider(cfg.LLM.Backend, locale, attachments))
	llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel))
	llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
	llmRouter.RegisterProvider(anthropic.NewProvider(cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model))
	llmRouter.RegisterProvider(deepseek.NewProvider(cfg.LLM.DeepSeek.APIKey, cfg.LLM.DeepSeek.Model))
	llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))

	if _, err := llmRouter.GetProvider(cfg.Assistant.Provider); err != nil {
		log.Warn().Err(err).Msg("Default assistant provider unavailable, replies will use the failure text")
	}

	broadcaster := events.NewBroadcaster()

	// Initialize conversation store
	conversations := store.New(ctx, slot,
		store.WithReplier(llmRouter),
		store.WithDelay(cfg.Assistant.ReplyDelay),
		store.WithLocale(locale),
		store.WithPublisher(broadcaster),
		store.WithGreeting(cfg.Assistant.Greeting),
		store.WithHistoryLimit(cfg.Assistant.HistoryLimit),
		store.WithKey(cfg.Storage.Key),
	)
	defer conversations.Close()

	chat := service.NewChatService(conversations, attachments, service.ChatOptions{
		AutoCreateOnEmpty: cfg.Assistant.AutoCreateOnEmpty,
		MaxMessageLength:  cfg.Assistant.MaxMessageLength,
		Locale:            locale,
	})
	if conv, ok := chat.EnsureConversation(ctx); ok {
		log.Info().Str("conversation_id", conv.ID).Int("conversations", conversations.Len()).Msg("Conversation store ready")
	}

	// Share the storage connection for rate limiting when it is Redis
	rl := cfg.Security.RateLimit
	var limiter middleware.Limiter
	if redisSlot, ok := slot.(*redis.SlotRepository); ok {
		limiter = redis.NewRateLimiter(redisSlot.Client(), rl.RequestsPerMinute, rl.Burst)
	} else {
		limiter = middleware.NewLocalLimiter(rl.RequestsPerMinute, rl.Burst)
	}

	// Initialize router
	router := api.NewRouter(api.Dependencies{
		Config:      cfg,
		Chat:        chat,
		Attachments: attachments,
		Broadcaster: broadcaster,
		LLM:         llmRouter,
		Storage:     slot,
		Limiter:     limiter,
		Locale:      locale,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
