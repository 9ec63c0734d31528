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
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ecoquerai/quer/internal/config"
	"github.com/ecoquerai/quer/internal/domain"
	logpkg "github.com/ecoquerai/quer/internal/logger"
	"github.com/ecoquerai/quer/internal/metrics"
	"github.com/ecoquerai/quer/internal/repository/parks"
	"github.com/ecoquerai/quer/internal/textproc"
	chiTransport "github.com/ecoquerai/quer/internal/transport/chi"
	openaiTransport "github.com/ecoquerai/quer/internal/transport/openai"
	"github.com/ecoquerai/quer/internal/transport/ratelimit"
	answeruc "github.com/ecoquerai/quer/internal/usecase/answer"
	"github.com/ecoquerai/quer/internal/usecase/conversation"
	healthuc "github.com/ecoquerai/quer/internal/usecase/health"
	"github.com/ecoquerai/quer/internal/usecase/ranking"
	"github.com/ecoquerai/quer/internal/version"
)

func main() {
	// .env first, then YAML config with ${VAR} expansion pulls from it
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting quer API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("parks_service", cfg.Parks.ServiceURL),
		zap.String("embedding_model", cfg.OpenAI.EmbeddingModel),
		zap.String("chat_model", cfg.OpenAI.ChatModel),
	)

	metrics.RegisterProviderMetrics()

	// One rate-limited transport shared by every outbound client: embeddings,
	// chat, transcription, and the parks listing all draw from the same quota.
	limited := ratelimit.New(nil,
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.WindowSec)*time.Second,
	)
	httpClient := limited.Client(time.Duration(cfg.OpenAI.RequestTimeoutSec) * time.Second)

	clientCfg := openaiTransport.ClientConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		HTTPClient: httpClient,
	}

	embedder := openaiTransport.NewEmbedder(clientCfg, cfg.OpenAI.EmbeddingModel, logger)
	chatter := openaiTransport.NewChatter(clientCfg, cfg.OpenAI.ChatModel, cfg.OpenAI.Temperature, logger)

	fetcher := parks.New(httpClient, cfg.Parks.ServiceURL, embedder, parks.NewLogObserver(logger), logger)

	convs := conversation.NewStore(cfg.Conversation.MaxTokens, logger)
	ranker := ranking.New(cfg.Parks.TopK)
	pre := textproc.New(cfg.Persona.Language)

	// Pass nil interface when audio is disabled; assigning only inside the
	// branch avoids the typed-nil-pointer-in-interface gotcha.
	var transcriber domain.Transcriber
	if cfg.Features.Audio {
		transcriber = openaiTransport.NewTranscriber(clientCfg, cfg.OpenAI.TranscriptionModel, logger)
	}

	answerSvc := answeruc.New(
		pre, fetcher, embedder, ranker, convs, chatter, transcriber,
		cfg.Persona.SystemContext(), cfg.Persona.Label, cfg.Persona.Language,
		logger,
	)

	healthSvc := healthuc.New(map[string]healthuc.Checker{
		"openai":  embedder,
		"catalog": fetcher,
	})

	server := chiTransport.NewServer(answerSvc, healthSvc, cfg.Features.EchoParks, cfg.Features.Audio, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

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
						"error": "An error occurred",
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
