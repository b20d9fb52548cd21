package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"csvreporter/internal/artifact"
	"csvreporter/internal/config"
	"csvreporter/internal/constants"
	"csvreporter/internal/logger"
	"csvreporter/internal/metadata"
	"csvreporter/internal/processing"
	"csvreporter/internal/report"
	"csvreporter/pkg/bootstrap"
	"csvreporter/pkg/health"
	"csvreporter/pkg/metrics"
	"csvreporter/pkg/middleware"
	"csvreporter/pkg/migrations"
	"csvreporter/pkg/ratelimit"
)

type App struct {
	config         *config.Config
	logger         logger.Logger
	storeConnector *bootstrap.StoreConnector
	mongoClient    *mongo.Client
	s3Client       *s3.Client
	service        *processing.Service
	server         *http.Server
	router         *gin.Engine
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("reporter-service")
	}
	return &App{
		config:         cfg,
		logger:         log,
		storeConnector: bootstrap.NewStoreConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initStores(ctx); err != nil {
		return fmt.Errorf("failed to initialize stores: %w", err)
	}

	a.initService()

	metrics.RegisterPipelineMetrics()
	if a.config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}
	if a.config.RateLimit.Enabled {
		metrics.RegisterRateLimitMetrics()
	}

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	a.initServer()

	return nil
}

func (a *App) initStores(ctx context.Context) error {
	mongoClient, err := a.storeConnector.InitMongoDB(ctx)
	if err != nil {
		return err
	}
	a.mongoClient = mongoClient

	s3Client, err := a.storeConnector.InitS3(ctx)
	if err != nil {
		return err
	}
	a.s3Client = s3Client

	if a.config.Database.RunMigrations {
		dbName := a.config.Database.MongoDB.Database
		if dbName == "" {
			dbName = constants.DefaultMongoDBName
		}
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := migrations.EnsureProcessedCollection(migrateCtx, mongoClient.Database(dbName), a.config.Pipeline.ProcessedCollection); err != nil {
			return fmt.Errorf("failed to prepare processed collection: %w", err)
		}
		a.logger.InfowCtx(ctx, "Processed collection indexes ensured",
			"collection", a.config.Pipeline.ProcessedCollection,
		)
	}

	return nil
}

func (a *App) initService() {
	dbName := a.config.Database.MongoDB.Database
	if dbName == "" {
		dbName = constants.DefaultMongoDBName
	}

	store := artifact.NewStore(a.s3Client, a.logger)

	baseRepo := metadata.NewRepository(a.mongoClient.Database(dbName), a.config.Pipeline.ProcessedCollection)
	var repo metadata.Repository = baseRepo
	if a.config.CircuitBreaker.Enabled {
		repo = metadata.NewCircuitBreakerRepository(baseRepo, a.config.CircuitBreaker)
		a.logger.Infow("Circuit breaker enabled for metadata repository")
	}

	computer := report.NewComputer(store, a.logger)

	a.service = processing.NewService(store, repo, computer, a.config.Pipeline, a.logger)
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.config.RateLimit.Enabled {
		rateLimitConfig := ratelimit.DefaultConfig()
		if a.config.RateLimit.RPS > 0 {
			rateLimitConfig.RPS = a.config.RateLimit.RPS
		}
		if a.config.RateLimit.Burst > 0 {
			rateLimitConfig.Burst = a.config.RateLimit.Burst
		}
		if a.config.RateLimit.CleanupInterval > 0 {
			rateLimitConfig.CleanupInterval = time.Duration(a.config.RateLimit.CleanupInterval) * time.Second
		}
		if a.config.RateLimit.MaxAge > 0 {
			rateLimitConfig.MaxAge = time.Duration(a.config.RateLimit.MaxAge) * time.Second
		}
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		a.logger.Infow("Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	healthRegistry.Register(health.NewS3Checker(a.s3Client, a.config.Pipeline.BucketName))

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler := processing.NewHandler(a.service, a.logger)
	handler.RegisterRoutes(router)

	a.router = router
	return nil
}

func (a *App) initServer() {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeoutSeconds) * time.Second,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(ctx, "HTTP server starting", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		return gCtx.Err()
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down reporter service")

	var errs []error
	errs = append(errs, a.storeConnector.ShutdownStores(ctx, a.mongoClient)...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.Info("Application exited successfully")
	return nil
}
