package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"modaix-api/internal/config"
	"modaix-api/internal/database"
	"modaix-api/internal/mailer"
	custommiddleware "modaix-api/internal/middleware"
	"modaix-api/internal/repository"
	"modaix-api/internal/service"
	"modaix-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	db          database.Service
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, m mailer.Mailer) *Server {
	router := chi.NewRouter()

	// Basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(db.Health())
	})

	// Redis backs rate limiting on the auth endpoints
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Repositories
	userRepo := repository.NewUserRepository(db.DB())
	refreshTokenRepo := repository.NewRefreshTokenRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())
	purchaseRepo := repository.NewPurchaseRepository(db.DB())
	favoriteRepo := repository.NewFavoriteRepository(db.DB())

	// Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg.JWT)
	catalogService := service.NewCatalogService(productRepo)
	orderService := service.NewOrderService(purchaseRepo, userRepo, m, cfg.Checkout, logger)
	favoriteService := service.NewFavoriteService(favoriteRepo)

	// Handlers
	authHandler := transport.NewAuthHandler(authService, logger)
	productHandler := transport.NewProductHandler(catalogService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	favoriteHandler := transport.NewFavoriteHandler(favoriteService, logger)
	uploadHandler := transport.NewUploadHandler(cfg.Upload, logger)

	authMiddleware := custommiddleware.NewAuthMiddleware(authService)

	rateLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 20,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:auth",
	}, logger)

	// Auth routes sit behind the rate limiter to slow credential stuffing
	router.Group(func(r chi.Router) {
		r.Use(rateLimiter)
		authHandler.RegisterRoutes(r, authMiddleware.RequireAuth)
	})

	productHandler.RegisterRoutes(router, authMiddleware.RequireAuth)
	orderHandler.RegisterRoutes(router, authMiddleware.RequireAuth, authMiddleware.OptionalAuth)
	favoriteHandler.RegisterRoutes(router, authMiddleware.RequireAuth)
	uploadHandler.RegisterRoutes(router, authMiddleware.RequireAuth)

	// Uploaded product images are served statically
	router.Handle(cfg.Upload.PublicBase+"/*",
		http.StripPrefix(cfg.Upload.PublicBase+"/", http.FileServer(http.Dir(cfg.Upload.Dir))))

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
