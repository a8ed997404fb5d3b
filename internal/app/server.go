// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"taskline-service/internal/config"
	"taskline-service/internal/db"
	"taskline-service/internal/federation/google"
	authHandler "taskline-service/internal/handlers/auth"
	"taskline-service/internal/middleware"
	"taskline-service/internal/pkg/jwt"
	"taskline-service/internal/pkg/session"
	"taskline-service/internal/repository/postgres"
	authUsecase "taskline-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("[REDIS] connected")

	// ----- JWT Manager -----
	jwtManager, err := jwt.Build(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Refresh-session store -----
	sessionStore := session.NewRedisStore(redisClient, s.cfg.JWT.RefreshTTL)

	// ----- Google federation -----
	googleVerifier, err := google.NewVerifier(ctx, s.cfg.GoogleClientID)
	if err != nil {
		return fmt.Errorf("failed to init google verifier: %w", err)
	}

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)

	// ----- Services -----
	authService := authUsecase.NewAuthService(userRepo, jwtManager, sessionStore, googleVerifier, logger)

	// ----- Handlers -----
	cookieCfg := authHandler.CookieConfig{
		Path:   s.cfg.CookiePath,
		Secure: s.cfg.CookieSecure,
		MaxAge: int(s.cfg.JWT.RefreshTTL.Seconds()),
	}
	authHandlerInst := authHandler.NewAuthHandler(authService, cookieCfg, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	SetupRouter(s.engine, &Handlers{
		AuthHandler:    authHandlerInst,
		AuthMiddleware: authMiddleware,
	})

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}
