package server

import (
	"fmt"
	"net/http"
	"time"

	"vendas-escolares/internal/config"
	"vendas-escolares/internal/database"
	custommiddleware "vendas-escolares/internal/middleware"
	"vendas-escolares/internal/repository"
	"vendas-escolares/internal/service"
	"vendas-escolares/internal/transport"
	"vendas-escolares/pkg/rabbitmq"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the optional backing services. A nil Redis client disables
// rate limiting and a nil RabbitMQ client disables order events.
type Dependencies struct {
	Redis    *redis.Client
	RabbitMQ *rabbitmq.Client
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, deps Dependencies) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	router.Get("/health", healthHandler(db, logger))

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.DB())
	orderRepo := repository.NewOrderRepository(db.DB())
	transactor := repository.NewTransactor(db.DB())

	// Initialize services
	var events service.EventPublisher
	if deps.RabbitMQ != nil {
		events = deps.RabbitMQ
	}
	catalogService := service.NewCatalogService(transactor, productRepo, logger)
	checkoutService := service.NewCheckoutService(transactor, productRepo, orderRepo, events, logger)

	// Initialize handlers
	productHandler := transport.NewProductHandler(catalogService, logger)
	checkoutHandler := transport.NewCheckoutHandler(checkoutService, logger)

	var confirmMiddlewares []func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled && deps.Redis != nil {
		confirmMiddlewares = append(confirmMiddlewares, custommiddleware.RateLimitMiddleware(
			deps.Redis,
			custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.Requests,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         "ratelimit:checkout",
			},
			logger,
		))
	}

	// Register routes
	productHandler.RegisterRoutes(router)
	checkoutHandler.RegisterRoutes(router, confirmMiddlewares...)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		deps:   deps,
	}

	return server
}

// healthHandler answers 200 while the database responds and 503 otherwise.
// The driver error is logged, never returned.
func healthHandler(db database.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbHealth := db.Health(r.Context())

		if dbHealth["status"] != "up" {
			logger.Error("Database health check failed", zap.String("error", dbHealth["error"]))
			custommiddleware.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":   "unavailable",
				"database": map[string]string{"status": "down"},
			})
			return
		}

		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"database": dbHealth,
		})
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.RabbitMQ != nil {
		if err := s.deps.RabbitMQ.Close(); err != nil {
			s.logger.Error("Failed to close RabbitMQ connection", zap.Error(err))
		}
	}

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close Redis connection", zap.Error(err))
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
