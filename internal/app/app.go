package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	emailadapter "github.com/MaheshMoholkar/ignite-lms/internal/adapter/email"
	mongoadapter "github.com/MaheshMoholkar/ignite-lms/internal/adapter/mongo"
	natsadapter "github.com/MaheshMoholkar/ignite-lms/internal/adapter/nats"
	redisadapter "github.com/MaheshMoholkar/ignite-lms/internal/adapter/redis"
	"github.com/MaheshMoholkar/ignite-lms/internal/adapter/storage"
	"github.com/MaheshMoholkar/ignite-lms/internal/app/config"
	"github.com/MaheshMoholkar/ignite-lms/internal/auth"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/metrics"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/tracer"
	httpport "github.com/MaheshMoholkar/ignite-lms/internal/port/http"
	"github.com/MaheshMoholkar/ignite-lms/internal/port/http/handler"
	"github.com/MaheshMoholkar/ignite-lms/internal/port/http/router"
	"github.com/MaheshMoholkar/ignite-lms/internal/service"
)

type App struct {
	cfg           *config.Config
	log           logger.Logger
	server        *httpport.Server
	notifications service.NotificationService
	metrics       *metrics.Manager
	mongoClient   *mongo.Client
	redisClient   *redis.Client
	natsConn      *nats.Conn
	traceProvider *sdktrace.TracerProvider
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("configuration loaded: env=%s, http port=%s", cfg.Env, cfg.HTTPServer.Port)

	var traceProvider *sdktrace.TracerProvider
	if cfg.Tracer.Enabled {
		traceProvider, err = tracer.Init(ctx, cfg.Tracer.Endpoint, cfg.Tracer.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}
		appLogger.Info("tracer initialized")
	}

	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	appLogger.Info("MongoDB client initialized")
	db := mongoClient.Database(cfg.MongoDB.Database)

	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	appLogger.Info("Redis client initialized")

	objStorage, err := storage.NewMinioStorage(ctx, cfg.Minio, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	appLogger.Info("object storage initialized")

	mailer, err := emailadapter.NewSMTPMailer(cfg.SMTP, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	// NATS is optional: the platform degrades to log-only events when the
	// broker is unreachable.
	var natsConn *nats.Conn
	var publisher natsadapter.MessagePublisher
	natsConn, err = natsadapter.NewConnection(cfg.NATS)
	if err != nil {
		appLogger.Warnf("NATS unavailable, events will not be published: %v", err)
	} else {
		publisher, err = natsadapter.NewPublisher(natsConn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
		}
		appLogger.Info("NATS publisher initialized")
	}

	metricsManager := metrics.NewManager("ignite_lms")

	userRepo := mongoadapter.NewUserRepository(db, appLogger)
	courseRepo := mongoadapter.NewCourseRepository(db)
	orderRepo := mongoadapter.NewOrderRepository(db, appLogger)
	notificationRepo := mongoadapter.NewNotificationRepository(db)
	layoutRepo := mongoadapter.NewLayoutRepository(db)
	sessionCache := redisadapter.NewSessionCache(redisClient, cfg.SessionCache.TTL)

	tokens := auth.NewTokenManager(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTTL,
		cfg.JWT.RefreshTTL,
		cfg.JWT.ActivationTTL,
	)

	userService := service.NewUserService(userRepo, sessionCache, tokens, objStorage, mailer, publisher, metricsManager, appLogger)
	courseService := service.NewCourseService(courseRepo, notificationRepo, objStorage, appLogger)
	orderService := service.NewOrderService(orderRepo, userRepo, courseRepo, notificationRepo, sessionCache, mailer, publisher, metricsManager, appLogger)
	notificationService := service.NewNotificationService(notificationRepo, appLogger)
	analyticsService := service.NewAnalyticsService(userRepo, courseRepo, orderRepo, appLogger)
	layoutService := service.NewLayoutService(layoutRepo, objStorage, appLogger)

	cookies := handler.NewCookieWriter(cfg.HTTPServer.SecureCookies, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL, cfg.JWT.ActivationTTL)

	handlers := router.Handlers{
		Users:         handler.NewUserHandler(userService, cookies, appLogger),
		Courses:       handler.NewCourseHandler(courseService, appLogger),
		Orders:        handler.NewOrderHandler(orderService, appLogger),
		Notifications: handler.NewNotificationHandler(notificationService, appLogger),
		Analytics:     handler.NewAnalyticsHandler(analyticsService, appLogger),
		Layouts:       handler.NewLayoutHandler(layoutService, appLogger),
	}

	mux := router.New(handlers, tokens, userService, metricsManager, appLogger)
	server := httpport.NewServer(cfg.HTTPServer, mux, appLogger)

	return &App{
		cfg:           cfg,
		log:           appLogger,
		server:        server,
		notifications: notificationService,
		metrics:       metricsManager,
		mongoClient:   mongoClient,
		redisClient:   redisClient,
		natsConn:      natsConn,
		traceProvider: traceProvider,
	}, nil
}

func (a *App) Run() {
	sweepCtx, stopSweeper := context.WithCancel(context.Background())

	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Fatalf("failed to start http server: %v", err)
		}
	}()

	go func() {
		if err := metrics.StartServer(a.cfg.Metrics.Port, a.log, a.metrics.Registry); err != nil {
			a.log.Errorf("metrics server exited: %v", err)
		}
	}()

	go a.notifications.StartSweeper(sweepCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("received shutdown signal: %v, shutting down", receivedSignal)

	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.log.Errorf("error during http server shutdown: %v", err)
	}

	if a.natsConn != nil {
		a.natsConn.Close()
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Errorf("error disconnecting from MongoDB: %v", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("error closing Redis client: %v", err)
		}
	}
	if a.traceProvider != nil {
		if err := a.traceProvider.Shutdown(shutdownCtx); err != nil {
			a.log.Errorf("error shutting down tracer: %v", err)
		}
	}

	a.log.Info("application shut down")
}
