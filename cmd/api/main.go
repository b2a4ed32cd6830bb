package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sigco3111/rpg-script-editor/internal/config"
	"github.com/sigco3111/rpg-script-editor/internal/handlers"
	"github.com/sigco3111/rpg-script-editor/internal/logger"
	"github.com/sigco3111/rpg-script-editor/internal/middleware"
	"github.com/sigco3111/rpg-script-editor/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting RPG Script Editor API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	var llmService services.LLMService
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		llmService = services.NewGeminiService(cfg.GeminiAPIKey, cfg.ModelName, log)
		log.Info("Using Gemini LLM provider")
	case config.ProviderOpenAI:
		llmService = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName, log)
		log.Info("Using OpenAI LLM provider")
	case config.ProviderMock:
		llmService = services.NewMockLLMAPI()
		log.Warn("Using mock LLM provider; generation endpoints return canned output")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider,
			"supported", []string{config.ProviderGemini, config.ProviderOpenAI, config.ProviderMock})
		os.Exit(1)
	}

	var storage services.Storage = services.NewRedisService(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := storage.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	initCtx, initCancel := context.WithTimeout(context.Background(), time.Minute)
	defer initCancel()
	if err := llmService.InitModel(initCtx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(storage, llmService, log)
	mux.Handle("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	projectHandler := handlers.NewProjectHandler(storage, log)
	mux.Handle("/v1/project", projectHandler)
	mux.Handle("/v1/project/world", projectHandler)
	mux.Handle("/v1/project/import", projectHandler)
	mux.Handle("/v1/project/export", projectHandler)

	stageHandler := handlers.NewStageHandler(storage, log)
	mux.Handle("/v1/project/stages", stageHandler)
	mux.Handle("/v1/project/stages/", stageHandler)

	generateHandler := handlers.NewGenerateHandler(llmService, storage, log)
	mux.Handle("/v1/generate/", generateHandler)

	playHandler := handlers.NewPlayHandler(storage, log)
	mux.Handle("/v1/play", playHandler)
	mux.Handle("/v1/play/", playHandler)

	handler := middleware.Logger(middleware.Metrics(mux))
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute, // generation requests wait on the model
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := storage.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
