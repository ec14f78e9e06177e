package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pawplates/engine/internal/api/handlers"
	"github.com/pawplates/engine/internal/api/middleware"
	"github.com/pawplates/engine/internal/config"
	"github.com/pawplates/engine/internal/embeddings"
	"github.com/pawplates/engine/internal/llm"
	"github.com/pawplates/engine/internal/observability"
	"github.com/pawplates/engine/internal/repository"
	"github.com/pawplates/engine/internal/service"
	"github.com/pawplates/engine/internal/similarity"
	"github.com/pawplates/engine/pkg/cache"
	"github.com/pawplates/engine/pkg/database"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	observability.SetupLogging(cfg.LogLevel)

	// Initialize database connection with pgvector type registration
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL,
		database.WithPgvector(),
		database.WithMaxConns(int32(cfg.DatabaseMaxConns)),
	)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db, cfg.EmbeddingDimensions); err != nil {
		slog.Error("Failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	// Metrics are exposed on the public mux at /metrics when enabled.
	var (
		meterProvider  observability.MeterProviderShutdown
		metricsHandler http.Handler
		engineMetrics  observability.EngineMetrics
	)
	if cfg.MetricsEnabled {
		meterProvider, metricsHandler, engineMetrics, err = observability.NewMeterProvider(ctx, observability.MeterProviderConfig{})
		if err != nil {
			slog.Error("Failed to initialize metrics", "error", err)
			os.Exit(1)
		}
	}

	// Initialize OpenAI clients if an API key is configured. Without a key
	// the engine still serves embedding storage and collaborative filtering;
	// profile recommendations and embedding refresh report unavailable.
	var embeddingClient embeddings.Client
	var generator llm.Client
	if cfg.OpenAIAPIKey != "" {
		embeddingClient = embeddings.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimensions, cfg.OpenAIRequestsPerMinute)
		generator = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.OpenAIRequestsPerMinute)
		slog.Info("OpenAI integration enabled", "chat_model", cfg.ChatModel, "embedding_model", cfg.EmbeddingModel)
	} else {
		slog.Info("OpenAI integration disabled (OPENAI_API_KEY not set)")
	}

	// Initialize repositories
	embeddingsRepo := repository.NewEmbeddingsRepository(db)
	favoritesRepo := repository.NewFavoritesRepository(db)
	mealHistoryRepo := repository.NewMealHistoryRepository(db)
	preferencesRepo := repository.NewPreferencesRepository(db)

	// Profile-text embeddings are cached so repeated refreshes of an
	// unchanged profile skip the OpenAI round trip.
	var embeddingCache *cache.LoaderCache[[]float32]
	if embeddingClient != nil {
		embeddingCache, err = cache.NewLoaderCache[[]float32](cfg.EmbeddingCacheSize)
		if err != nil {
			slog.Error("Failed to create embedding cache", "error", err)
			os.Exit(1)
		}
	}

	similarityEngine := similarity.NewEngine(embeddingsRepo, cfg.EmbeddingDimensions,
		similarity.WithCallTimeout(cfg.ExternalCallTimeout))

	embeddingService := service.NewEmbeddingService(service.EmbeddingServiceParams{
		Repo:           embeddingsRepo,
		Prefs:          preferencesRepo,
		History:        mealHistoryRepo,
		Embedder:       embeddingClient,
		EmbeddingCache: embeddingCache,
		Dimensions:     cfg.EmbeddingDimensions,
		HistoryLimit:   cfg.HistoryPromptLimit,
		CallTimeout:    cfg.ExternalCallTimeout,
	})

	recommendationService := service.NewRecommendationService(service.RecommendationServiceParams{
		Embeddings:        embeddingsRepo,
		Similarity:        similarityEngine,
		Favorites:         favoritesRepo,
		Generator:         generator,
		SimilarUserCount:  cfg.SimilarUserCount,
		RecommendationCap: cfg.RecommendationCap,
		HistoryLimit:      cfg.HistoryPromptLimit,
		CallTimeout:       cfg.ExternalCallTimeout,
	})

	limiter := service.NewFixedWindowLimiter(cfg.RateLimitMaxRequests, cfg.RateLimitWindow)

	embeddingHandler := handlers.NewEmbeddingHandler(embeddingService, engineMetrics)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService, engineMetrics)
	profileHandler := handlers.NewProfileHandler(mealHistoryRepo, preferencesRepo, favoritesRepo)
	healthHandler := handlers.NewHealthHandler()

	// Public endpoints (no authentication required)
	publicMux := http.NewServeMux()
	publicMux.HandleFunc("GET /health", healthHandler.Check)
	if metricsHandler != nil {
		publicMux.Handle("GET /metrics", metricsHandler)
	}

	// Protected endpoints (authentication required). Mutating endpoints
	// that feed the personalization pipeline sit behind the fixed-window
	// limiter, scoped per user where a path id is available.
	protectedMux := http.NewServeMux()

	protectedMux.Handle("PUT /v1/users/{id}/embedding",
		middleware.RateLimit(limiter, "embedding-update", engineMetrics)(http.HandlerFunc(embeddingHandler.Update)))
	protectedMux.HandleFunc("GET /v1/users/{id}/embedding", embeddingHandler.Get)
	protectedMux.Handle("POST /v1/users/{id}/embedding/refresh",
		middleware.RateLimit(limiter, "embedding-refresh", engineMetrics)(http.HandlerFunc(embeddingHandler.Refresh)))

	protectedMux.Handle("POST /v1/recommendations/profile",
		middleware.RateLimit(limiter, "recommend-profile", engineMetrics)(http.HandlerFunc(recommendationHandler.FromProfile)))
	protectedMux.HandleFunc("GET /v1/users/{id}/recommendations/collaborative", recommendationHandler.Collaborative)
	protectedMux.Handle("POST /v1/assistant",
		middleware.RateLimit(limiter, "assistant", engineMetrics)(http.HandlerFunc(recommendationHandler.Assistant)))

	protectedMux.Handle("POST /v1/users/{id}/meal-history",
		middleware.RateLimit(limiter, "meal-history", engineMetrics)(http.HandlerFunc(profileHandler.AddMeal)))
	protectedMux.HandleFunc("GET /v1/users/{id}/meal-history", profileHandler.ListMeals)

	protectedMux.HandleFunc("PUT /v1/users/{id}/preferences", profileHandler.PutPreferences)
	protectedMux.HandleFunc("GET /v1/users/{id}/preferences", profileHandler.GetPreferences)

	protectedMux.Handle("POST /v1/users/{id}/favorites",
		middleware.RateLimit(limiter, "favorites", engineMetrics)(http.HandlerFunc(profileHandler.SaveFavorite)))

	var protectedHandler http.Handler = protectedMux
	protectedHandler = middleware.MaxBody(maxRequestBodyBytes)(protectedHandler)
	protectedHandler = middleware.Auth(cfg.APIKey)(protectedHandler)

	mainMux := http.NewServeMux()
	mainMux.Handle("/v1/", protectedHandler)
	mainMux.Handle("/", publicMux)

	// Request ID runs outermost so the logger and metrics see it on every
	// request; Metrics wraps Logging so duration covers the full request.
	handler := middleware.Logging(mainMux)
	handler = middleware.Metrics(engineMetrics)(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	if meterProvider != nil {
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Meter provider forced to shutdown", "error", err)
		}
	}

	slog.Info("Server exited")
}
