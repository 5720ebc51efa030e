package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abiodunmale/todoapi/internal/auth"
	"github.com/abiodunmale/todoapi/internal/cache"
	"github.com/abiodunmale/todoapi/internal/config"
	"github.com/abiodunmale/todoapi/internal/database"
	"github.com/abiodunmale/todoapi/internal/handlers"
	"github.com/abiodunmale/todoapi/internal/logger"
	"github.com/abiodunmale/todoapi/internal/middleware"
	redisclient "github.com/abiodunmale/todoapi/internal/redis"
	"github.com/abiodunmale/todoapi/internal/service"
	"github.com/abiodunmale/todoapi/internal/storage"
)

func main() {
	log := logger.New("todo-api")
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	dbManager, err := database.NewDBManager(ctx, database.Config{
		PrimaryDSN:      cfg.Database.PrimaryDSN,
		ReplicaDSNs:     cfg.Database.ReplicaDSNs,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer dbManager.Close()

	redisClient, err := redisclient.NewRedisClient(ctx, redisclient.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
		log.Warn().Msg("JWT_SECRET not set, using default (insecure for production)")
	}

	jwtManager := auth.NewJWTManager(jwtSecret, cfg.Auth.TokenTTL)
	pageCache := cache.NewPageCache(redisClient.GetClient(), cfg.Cache.TTL)

	userStorage := storage.NewUserStorage(dbManager)
	todoStorage := storage.NewTodoStorage(dbManager)

	authService := service.NewAuthService(userStorage, jwtManager)
	todoService := service.NewTodoService(todoStorage, pageCache)

	authHandler := handlers.NewAuthHandler(authService)
	todoHandler := handlers.NewTodoHandler(todoService)

	authMW := middleware.NewAuthMiddleware(jwtManager)
	globalLimiter := middleware.NewRateLimiter(
		redisClient.GetClient(), "global",
		cfg.RateLimit.GlobalRequests, cfg.RateLimit.Window,
		"Too many requests from this IP, please try again later.",
	)
	authLimiter := middleware.NewRateLimiter(
		redisClient.GetClient(), "auth",
		cfg.RateLimit.AuthRequests, cfg.RateLimit.Window,
		"Too many login attempts, please try again later.",
	)

	mux := http.NewServeMux()

	mux.Handle("POST /api/v1/auth/register", authLimiter.Middleware(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/v1/auth/login", authLimiter.Middleware(http.HandlerFunc(authHandler.Login)))

	mux.HandleFunc("GET /api/v1/todos", authMW.RequireAuth(todoHandler.List))
	mux.HandleFunc("POST /api/v1/todos", authMW.RequireAuth(todoHandler.Create))
	mux.HandleFunc("GET /api/v1/todos/{id}", authMW.RequireAuth(todoHandler.GetByID))
	mux.HandleFunc("PUT /api/v1/todos/{id}", authMW.RequireAuth(todoHandler.Update))
	mux.HandleFunc("DELETE /api/v1/todos/{id}", authMW.RequireAuth(todoHandler.Delete))

	mux.HandleFunc("GET /api/v1/health", handlers.Health)

	recoverMW := middleware.NewRecover(cfg.Server.Env == "development")
	requestLogger := middleware.NewRequestLogger()

	handler := recoverMW.Middleware(
		requestLogger.Middleware(
			globalLimiter.Middleware(mux),
		),
	)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: handler,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("todo api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("stopped")
}
