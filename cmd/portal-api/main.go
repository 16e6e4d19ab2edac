package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sharepoint-portal/portal-backend/internal/auth"
	"sharepoint-portal/portal-backend/internal/config"
	"sharepoint-portal/portal-backend/internal/database"
	"sharepoint-portal/portal-backend/internal/events"
	"sharepoint-portal/portal-backend/internal/httputil"
	"sharepoint-portal/portal-backend/internal/logging"
	"sharepoint-portal/portal-backend/internal/metrics"
	"sharepoint-portal/portal-backend/internal/notifications"
	"sharepoint-portal/portal-backend/internal/sharepoints"
	"sharepoint-portal/portal-backend/internal/users"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	stores, err := database.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer stores.Close(context.Background())

	sender, err := newSender(ctx, cfg.Email, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email sender", zap.Error(err))
	}
	notifier, err := notifications.NewService(sender, logger, notifications.ServiceConfig{
		PortalURL:   cfg.Email.PortalURL,
		Concurrency: cfg.Workflow.NotificationConcurrency,
	})
	if err != nil {
		logger.Fatal("Failed to initialize notifications", zap.Error(err))
	}

	validator, err := auth.NewTokenValidator(cfg.Security.JWTSecret)
	if err != nil {
		logger.Fatal("Failed to initialize token validator", zap.Error(err))
	}

	publisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize event publisher", zap.Error(err))
	}

	spService := sharepoints.NewService(stores.SharePoints, stores.Users, notifier, logger, sharepoints.Options{
		ManagerRoles: cfg.Workflow.ManagerRoles,
		Events:       publisher,
	})
	spHandler := sharepoints.NewHandler(spService, logger)
	usersHandler := users.NewHandler(users.NewService(stores.Users, logger), logger)
	authHandler := auth.NewHandler()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httputil.RequestID())
	router.Use(metrics.Middleware())

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1", auth.Middleware(validator, stores.Users, logger))
	{
		authHandler.RegisterRoutes(api)
		spHandler.RegisterRoutes(api)
		usersHandler.RegisterRoutes(api)
	}

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "healthy", "timestamp": time.Now()}
		if err := stores.SQL.PingContext(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
		}
		c.JSON(status, body)
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := spService.Drain(shutdownCtx); err != nil {
		logger.Warn("Pending notifications abandoned", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func newSender(ctx context.Context, cfg config.EmailConfig, logger *zap.Logger) (notifications.Sender, error) {
	switch cfg.Provider {
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		return notifications.NewSESSender(sesv2.NewFromConfig(awsCfg), cfg.FromAddress), nil
	case "smtp":
		return notifications.NewSMTPSender(notifications.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.Username,
			Password:    cfg.Password,
			FromAddress: cfg.FromAddress,
		}), nil
	default:
		return notifications.NewLogSender(logger), nil
	}
}

func newPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (events.Publisher, error) {
	if cfg.Events.SNSTopicARN == "" {
		return events.NewLogPublisher(logger), nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Email.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	logger.Info("Publishing workflow events to SNS", zap.String("topic", cfg.Events.SNSTopicARN))
	return events.NewSNSPublisher(sns.NewFromConfig(awsCfg), cfg.Events.SNSTopicARN), nil
}
