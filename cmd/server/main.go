package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"proposalai/internal/app"
	"proposalai/internal/config"
	"proposalai/internal/ratelimit"
	"proposalai/internal/server"
	"proposalai/internal/util"
	"proposalai/pkg/storage"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}
	latency, err := config.ParseSimulatedLatency(cfg.SimulatedLatency)
	if err != nil {
		log.Fatalf("failed to parse simulated latency: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	trusted, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		objects, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init object store: %v", err)
		}
	}

	appCore, err := app.New(app.Config{
		DatabaseURL:     cfg.DatabaseURL,
		RedisAddr:       cfg.RedisAddr,
		RedisPassword:   cfg.RedisPassword,
		SessionStrategy: cfg.SessionStrategy,
		SessionTTL:      sessionTTL,
		JWTSecret:       cfg.JWTSecret,
		PublicBaseURL:   cfg.PublicBaseURL,
		Objects:         objects,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	serverCfg := server.Config{
		App:              appCore,
		SimulatedLatency: latency,
		TrustedProxies:   trusted,
	}
	if cfg.RedisAddr != "" {
		newLimiter := func(name string, limit, fallback int) (*ratelimit.FixedWindowLimiter, error) {
			if limit <= 0 {
				limit = fallback
			}
			prefix := "proposalai:ratelimit:" + name
			return ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, time.Minute)
		}
		if serverCfg.SignupLimiter, err = newLimiter("signup", cfg.SignupRateLimitPerMinute, 5); err != nil {
			log.Fatalf("failed to init signup limiter: %v", err)
		}
		if serverCfg.LoginLimiter, err = newLimiter("login", cfg.LoginRateLimitPerMinute, 10); err != nil {
			log.Fatalf("failed to init login limiter: %v", err)
		}
		if serverCfg.PasswordLimiter, err = newLimiter("password", cfg.PasswordRateLimitPerMinute, 10); err != nil {
			log.Fatalf("failed to init password limiter: %v", err)
		}
	}
	httpServer := server.New(serverCfg)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("proposal server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}
}
