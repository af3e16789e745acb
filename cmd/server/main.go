package main

import (
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"bankisha/internal/ai"
	"bankisha/internal/app"
	"bankisha/internal/config"
	"bankisha/internal/identity"
	"bankisha/internal/processor"
	"bankisha/internal/ratelimit"
	"bankisha/internal/server"
	"bankisha/internal/servicetoken"
	"bankisha/internal/storage"
	"bankisha/internal/store"
	"bankisha/internal/util"
)

const serviceName = "bankisha-api"

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	st, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	sessions := store.NewRedisSessionStore(redisClient, sessionTTL)

	objects, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("failed to init object storage: %v", err)
	}

	generator, err := buildGenerator(cfg)
	if err != nil {
		log.Fatalf("failed to init ai provider: %v", err)
	}

	verifier, err := identity.NewVerifier(identity.VerifierConfig{
		JWKSURL:  cfg.JWKSURL,
		Issuer:   cfg.TokenIssuer,
		Audience: cfg.TokenAudience,
	})
	if err != nil {
		log.Fatalf("failed to init token verifier: %v", err)
	}
	resolver := identity.ChainResolver{
		identity.NewSessionResolver(sessions, cfg.SessionCookieName),
		verifier,
	}

	signer, err := servicetoken.NewSigner(cfg.ServiceTokenSecret, serviceName, servicetoken.DefaultTokenTTL)
	if err != nil {
		log.Fatalf("failed to init service token signer: %v", err)
	}
	svcVerifier, err := servicetoken.NewVerifier(cfg.ServiceTokenSecret, serviceName, []string{serviceName}, servicetoken.DefaultLeeway)
	if err != nil {
		log.Fatalf("failed to init service token verifier: %v", err)
	}

	var trigger *app.ProcessTrigger
	if cfg.ProcessEndpoint != "" {
		trigger, err = app.NewProcessTrigger(cfg.ProcessEndpoint, serviceName, signer)
		if err != nil {
			log.Fatalf("failed to init process trigger: %v", err)
		}
	}

	appCore, err := app.New(app.Config{
		Store:     st,
		Objects:   objects,
		Generator: generator,
		Trigger:   trigger,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.PublicRateLimit > 0 && cfg.PublicRateWindowSeconds > 0 {
		limiter, err = ratelimit.NewFixedWindowLimiter(redisClient, "bankisha:ratelimit",
			cfg.PublicRateLimit, time.Duration(cfg.PublicRateWindowSeconds)*time.Second)
		if err != nil {
			log.Fatalf("failed to init rate limiter: %v", err)
		}
	}

	httpServer := server.New(server.Config{
		App:               appCore,
		Resolver:          resolver,
		Verifier:          verifier,
		Sessions:          sessions,
		Processor:         processor.New(st, objects, generator),
		ServiceVerifier:   svcVerifier,
		PublicLimiter:     limiter,
		SessionCookieName: cfg.SessionCookieName,
		SessionTTL:        sessionTTL,
	})

	handler := util.WithRequestID(util.WithRequestLog(
		util.WithSecurityHeaders(util.WithCORS(cfg.CORSOrigins, httpServer.Router()))))

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

func buildGenerator(cfg config.FileConfig) (ai.TextGenerator, error) {
	if strings.EqualFold(strings.TrimSpace(cfg.AIProvider), "openai") {
		return ai.NewOpenAICompatGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	}
	client, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	model := cfg.GeminiModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return ai.NewGeminiGenerator(client, model), nil
}
