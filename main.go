package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"thumbnail-pipeline/config"
	"thumbnail-pipeline/handlers"
	"thumbnail-pipeline/llm"
	"thumbnail-pipeline/metrics"
	"thumbnail-pipeline/middleware"
	"thumbnail-pipeline/openai"
	"thumbnail-pipeline/stubllm"
)

const (
	EndPointHealth    = "/api/v1/health"
	EndPointStatus    = "/api/v1/status"
	EndPointUploads   = "/api/v1/uploads"
	EndPointAnalyses  = "/api/v1/analyses"
	EndPointSynth     = "/api/v1/synthesize"
	EndPointGenerate  = "/api/v1/generate"
	EndPointThumbnail = "/api/v1/thumbnail"
	EndPointSession   = "/api/v1/session"
	EndPointMetrics   = "/metrics"
)

func main() {
	// Optional .env for local runs
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	log.SetLevelFromString(cfg.LogLevel)

	log.WithField("model", cfg.OpenAIModel).
		WithField("image_model", cfg.ImageModel).
		WithField("provider", cfg.LLMProvider).
		Info("starting thumbnail pipeline service")

	// Register Prometheus metrics
	metrics.Register()

	// Provider factory. With the stub provider no key is needed, so local
	// runs and CI exercise the full pipeline without a network.
	var factory handlers.ClientFactory
	if cfg.LLMProvider == "stub" {
		if cfg.OpenAIAPIKey == "" {
			cfg.OpenAIAPIKey = "stub"
		}
		factory = func(string) llm.Client { return stubllm.NewClient() }
	} else {
		factory = func(apiKey string) llm.Client {
			return openai.NewClient(apiKey, cfg.OpenAIModel, cfg.ImageModel, cfg.OpenAIBaseURL, cfg.ImageAttachment)
		}
	}

	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set; API calls will require an X-API-Key header")
	}

	// Initialize handlers
	h := handlers.NewHandlers(cfg, factory)

	// Setup HTTP server
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-API-Key, accept, origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health and metrics outside the rate limit
	router.GET(EndPointHealth, h.HealthCheck)
	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimit, cfg.RateWindow))
	{
		api.GET(EndPointStatus, h.GetStatus)
		api.POST(EndPointUploads, h.AnalyzeUploads)
		api.GET(EndPointAnalyses, h.GetAnalyses)
		api.POST(EndPointSynth, h.Synthesize)
		api.POST(EndPointGenerate, h.Generate)
		api.GET(EndPointThumbnail, h.GetThumbnail)
		api.DELETE(EndPointSession, h.ResetSession)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}
