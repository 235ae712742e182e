package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pet-adoption/internal/adapters/auth/jwt"
	"pet-adoption/internal/adapters/auth/odin"
	"pet-adoption/internal/adapters/capabilities/roles"
	"pet-adoption/internal/config"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/router"
)

// @title Pet Adoption API
// @version 1.0
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	stores, err := router.OpenStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			log.Warn("storage close failed", map[string]any{"error": err.Error()})
		}
	}()

	tokens, verifier, err := buildAuth(cfg, stores, log)
	if err != nil {
		return err
	}

	r := router.NewRouter(router.Options{
		Logger:         log,
		Verifier:       verifier,
		Tokens:         tokens,
		DebugHeaders:   cfg.DevAuth(),
		Stores:         &stores,
		Authorizer:     roles.NewAuthorizer(cfg.AllowAllCapabilities),
		Metrics:        metrics.New(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Addr(), "backend": stores.Backend, "dev_auth": cfg.DevAuth()})
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildAuth: los tokens siempre los emite el manager JWT local; se verifican
// con Odin si está configurado. Sin JWT_SECRET se usa uno efímero (modo dev).
func buildAuth(cfg config.Config, stores router.Stores, log logger.Logger) (auth.TokenIssuer, auth.AuthVerifier, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = randomSecret()
		log.Warn("JWT_SECRET not set, using an ephemeral secret", nil)
	}
	manager, err := jwt.NewManager(secret, cfg.JWTTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("jwt: %w", err)
	}

	if cfg.OdinBaseURL == "" {
		return manager, manager, nil
	}
	client, err := odin.NewClient(odin.Config{BaseURL: cfg.OdinBaseURL, APIKey: cfg.OdinAPIKey})
	if err != nil {
		return nil, nil, err
	}
	log.Info("token verification delegated to odin", map[string]any{"base_url": cfg.OdinBaseURL})
	localRoles := func(ctx context.Context, userID string) (auth.Role, bool) {
		u, err := stores.Users.GetByID(ctx, userID)
		if err != nil {
			return "", false
		}
		return u.Role, true
	}
	return manager, odin.NewVerifier(client, odin.WithLocalRoles(localRoles)), nil
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
