package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ctfboard/scoreboard/config"
	"github.com/ctfboard/scoreboard/db"
	"github.com/ctfboard/scoreboard/handlers"
	"github.com/ctfboard/scoreboard/live"
	"github.com/ctfboard/scoreboard/repositories"
	api "github.com/ctfboard/scoreboard/routes"
	"github.com/ctfboard/scoreboard/services"
	"github.com/ctfboard/scoreboard/session"
	"github.com/ctfboard/scoreboard/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()
	sessionStore := session.NewRedisStore(redisClient)
	logger.Info("redis connection established", slog.String("addr", cfg.RedisAddr))

	var uploader storage.Uploader
	switch cfg.LogoStorage {
	case config.LogoStorageR2:
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
	default:
		uploader, err = storage.NewLocalUploader(storage.LocalUploaderConfig{
			BaseDir:        cfg.LogoDir,
			PublicBasePath: cfg.LogoPublicPath,
		}, logger)
	}
	if err != nil {
		logger.Error("failed to initialize logo storage", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("logo storage initialized", slog.String("backend", cfg.LogoStorage))

	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	tokenRepo := repositories.NewPostgresTokenRepository(dbConn)
	logoRepo := repositories.NewPostgresLogoRepository(dbConn)
	configRepo := repositories.NewPostgresConfigRepository(dbConn)
	logger.Info("repositories initialized")

	hub := live.NewHub(logger)

	configGate := services.NewConfigGate(configRepo)
	credentialService := services.NewCredentialService(teamRepo)
	tokenService := services.NewTokenService(tokenRepo)
	logoResolver := services.NewLogoResolver(logoRepo, uploader, logger)
	loginService := services.NewLoginService(configGate, teamRepo, credentialService)
	registrationService := services.NewRegistrationService(
		configGate,
		teamRepo,
		rosterRepo,
		tokenService,
		logoResolver,
		credentialService,
		loginService,
		hub,
		logger,
	)
	logger.Info("services initialized")

	indexHandler := handlers.NewIndexHandler(
		registrationService,
		loginService,
		configGate,
		sessionStore,
		cfg.JWTSecretKey,
		logger,
	)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, indexHandler, webSocketHandler, []byte(cfg.JWTSecretKey))
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gCtx)
		return nil
	})

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}
