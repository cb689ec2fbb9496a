package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/aas-cloud/doorpilot/internal/auth"
	"github.com/aas-cloud/doorpilot/internal/config"
	"github.com/aas-cloud/doorpilot/internal/db"
	dbRedis "github.com/aas-cloud/doorpilot/internal/db/redis"
	"github.com/aas-cloud/doorpilot/internal/domain"
	logpkg "github.com/aas-cloud/doorpilot/internal/logger"
	"github.com/aas-cloud/doorpilot/internal/metrics"
	"github.com/aas-cloud/doorpilot/internal/repository/embcache"
	chiTransport "github.com/aas-cloud/doorpilot/internal/transport/chi"
	openaiClient "github.com/aas-cloud/doorpilot/internal/transport/openai"
	"github.com/aas-cloud/doorpilot/internal/transport/qdrant"
	chatuc "github.com/aas-cloud/doorpilot/internal/usecase/chat"
	diagnoseuc "github.com/aas-cloud/doorpilot/internal/usecase/diagnose"
	healthuc "github.com/aas-cloud/doorpilot/internal/usecase/health"
	retrievaluc "github.com/aas-cloud/doorpilot/internal/usecase/retrieval"
	searchuc "github.com/aas-cloud/doorpilot/internal/usecase/search"
	"github.com/aas-cloud/doorpilot/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting doorpilot API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("inference_base_url", cfg.Inference.BaseURL),
		zap.String("vector_base_url", cfg.Vector.BaseURL),
	)

	// Register RAG metrics explicitly (no init())
	metrics.RegisterRAGMetrics()

	// Inference client (chat, diagnose and embeddings)
	inference := openaiClient.NewClient(&openaiClient.Config{
		APIKey:          cfg.Inference.APIKey,
		BaseURL:         cfg.Inference.BaseURL,
		ChatModel:       cfg.Inference.ChatModel,
		EmbedModel:      cfg.Inference.EmbedModel,
		ChatTemperature: cfg.Inference.ChatTemperature,
		DiagTemperature: cfg.Inference.DiagTemperature,
		Logger:          logger,
	})

	// Optional embedding cache
	var store db.Store
	var embedder domain.Embedder = inference
	if cfg.Cache.Enabled {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessSec)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache")

		embedder = embcache.New(
			inference, store,
			time.Duration(cfg.Cache.TTLHours)*time.Hour,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	// Vector index client
	index := qdrant.NewClient(&qdrant.Config{
		BaseURL: cfg.Vector.BaseURL,
		APIKey:  cfg.Vector.APIKey,
		Timeout: time.Duration(cfg.Vector.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	// Use case services
	retrievalSvc := retrievaluc.New(embedder, index, retrievaluc.Collections{
		Playbooks: cfg.Vector.CollectionPlaybooks,
		Manuals:   cfg.Vector.CollectionManuals,
		Parts:     cfg.Vector.CollectionParts,
	})
	chatSvc := chatuc.New(retrievalSvc, inference)
	diagnoseSvc := diagnoseuc.New(retrievalSvc, inference)
	searchSvc := searchuc.New(embedder, index, searchuc.Names{
		Playbooks: cfg.Vector.CollectionPlaybooks,
		Manuals:   cfg.Vector.CollectionManuals,
		Parts:     cfg.Vector.CollectionParts,
	})

	// Pass nil interface (not typed nil pointer!) if the cache is disabled.
	// Go gotcha: (*redis.Store)(nil) wrapped in CachePinger != nil.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(index, inference, cachePinger)

	// Token verifier — nil when no identity provider is configured.
	// Same typed-nil gotcha as the cache pinger above.
	var verifier chiTransport.TokenVerifier
	if v := auth.NewVerifier(cfg.Auth); v != nil {
		verifier = v
		logger.Info("Token verification enabled", zap.String("issuer", cfg.Auth.Issuer()))
	} else {
		logger.Warn("No auth domain configured, all callers are anonymous")
	}

	// Create chi server
	server := chiTransport.NewServer(chatSvc, diagnoseSvc, searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware(cfg.HTTP.AllowedOrigins))
	r.Use(chiTransport.AuthMiddleware(verifier))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
