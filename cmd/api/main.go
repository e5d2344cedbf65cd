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

	"notifyflow/cmd/internal/config"
	"notifyflow/cmd/internal/domain/policy"
	"notifyflow/cmd/internal/domain/sqlite"
	"notifyflow/cmd/internal/domain/sqlite/repository"
	"notifyflow/cmd/internal/http/handler"
	mw "notifyflow/cmd/internal/http/middleware"
	"notifyflow/cmd/internal/infrastructure/aws/storage"
	"notifyflow/cmd/internal/infrastructure/aws/websocket"
	"notifyflow/cmd/internal/infrastructure/socket"
	"notifyflow/cmd/internal/metrics"
	"notifyflow/cmd/internal/presence"
	"notifyflow/cmd/internal/service"
	"notifyflow/cmd/internal/service/jobs"
	"notifyflow/cmd/internal/utils/uid"
	"notifyflow/cmd/internal/utils/validators"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/spf13/viper"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Loads env vars depending on environment
	if err := config.LoadEnv(ctx); err != nil {
		log.Fatalf("unable to load environment: %v", err)
	}

	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.GommonLevel())

	if err := uid.Init(cfg.SnowflakeNode); err != nil {
		log.Fatal(err)
	}

	validate := validator.New()
	validators.Register(validate)

	// Init SQLite
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("unable to open database: %v", err)
	}

	// Getting repos
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	logRepo := repository.NewLogRepository(db)
	connRepo := repository.NewConnectionRepository(db)

	// Push transport
	var hub *socket.Hub
	var gateway service.PushGateway
	switch cfg.Push.Mode {
	case config.PushModeGateway:
		gateway, err = websocket.NewAWSGatewayClient(ctx, cfg.Push.GatewayEndpoint, cfg.Push.GatewayRegion)
		if err != nil {
			log.Fatalf("unable to create gateway client: %v", err)
		}
	default:
		hub = socket.NewHub()
		gateway = hub
	}

	// Getting services
	userPolicy := policy.NewUserPolicy()
	audit := service.NewAuditLogger(logRepo)
	authService := service.NewAuthService(userRepo, validate, audit)
	demoService := service.NewDemoService()
	dashboardService := service.NewDashboardService(userRepo, eventRepo, notificationRepo)
	systemService := service.NewSystemService(cfg.Region, eventRepo, notificationRepo)
	eventService := service.NewEventService(userRepo, eventRepo, notificationRepo, validate, audit)
	identityService := service.NewIdentityService(userRepo)

	wsService := service.NewWebSocketService(connRepo, gateway)
	if err := wsService.PurgeConnections(); err != nil {
		log.Fatalf("unable to reset connection registry: %v", err)
	}

	tracker := presence.NewTracker(identityService, wsService)
	wsService.SetPresence(tracker)

	adminService := &service.AdminService{
		UserRepo:         userRepo,
		EventRepo:        eventRepo,
		NotificationRepo: notificationRepo,
		LogRepo:          logRepo,
		Validate:         validate,
		UserPolicy:       userPolicy,
		Audit:            audit,
		System:           systemService,
		Sockets:          wsService,
		Presence:         tracker,
	}

	// Init S3 client, exports are disabled without a bucket
	if cfg.Archive.Bucket != "" {
		archive, err := storage.NewStorageClient(ctx, cfg.Archive.Bucket, cfg.Archive.Region)
		if err != nil {
			log.Fatalf("unable to create storage client: %v", err)
		}
		adminService.Archive = archive
	}

	// Background workers
	go tracker.Run(ctx)
	go wsService.StartDispatcher(ctx)
	go jobs.NewDemoSessionCleaner(demoService).Start(ctx)
	if cfg.Push.Mode == config.PushModeGateway {
		go jobs.NewConnectionCleaner(wsService, cfg.Push.HeartbeatTimeout).Start(ctx)
	}

	// Getting handlers
	authRoutes := handler.NewAuthDefault(authService, demoService)
	dashboardRoutes := handler.NewDashboardDefault(dashboardService, eventService)
	systemRoutes := handler.NewSystemDefault(systemService)
	adminRoutes := handler.NewAdminDefault(adminService, eventService)
	wsRoutes := handler.NewWSDefault(wsService, hub, cfg.AllowedOrigins())

	authMiddleware := mw.NewAuthMiddleware(&mw.AuthMiddlewareConfig{Auth: authService})
	adminMiddleware := mw.NewAdminMiddleware(userPolicy)
	upgradeLimiter := mw.NewUpgradeRateLimiter(cfg.Push.RateLimit)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debugf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: []string{echo.HeaderContentType, mw.HeaderUserID},
	}))
	e.Use(middleware.BodyLimit("1M"))

	// Auth
	e.POST("/api/auth/register", authRoutes.Register)
	e.POST("/api/auth/login", authRoutes.Login)
	e.POST("/api/demo/start", authRoutes.StartDemo)
	e.POST("/api/demo/logout", authRoutes.LogoutDemo)

	// Public system endpoints
	e.GET("/api/system/status", systemRoutes.GetStatus)
	e.GET("/api/health", handler.HealthCheck)
	e.GET("/health", handler.HealthCheck) // Docker Compose healthcheck
	e.GET("/metrics", metrics.Handler())

	// Signed in
	api := e.Group("/api", authMiddleware)
	api.GET("/dashboard/stats", dashboardRoutes.GetStats)
	api.GET("/dashboard/events", dashboardRoutes.GetEvents)
	api.GET("/dashboard/notifications", dashboardRoutes.GetNotifications)
	api.GET("/dashboard/analytics", dashboardRoutes.GetAnalytics)
	api.GET("/system/workers", systemRoutes.GetWorkers)
	api.POST("/events/trigger", dashboardRoutes.TriggerEvent)
	api.POST("/broadcasts", dashboardRoutes.Broadcast, adminMiddleware)

	// Admin
	admin := e.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.GET("/stats", adminRoutes.GetStats)
	admin.GET("/users", adminRoutes.GetUsers)
	admin.PATCH("/users/:id/suspend", adminRoutes.SuspendUser)
	admin.PATCH("/users/:id/role", adminRoutes.UpdateRole)
	admin.DELETE("/users/:id", adminRoutes.DeleteUser)
	admin.GET("/logs", adminRoutes.GetLogs)
	admin.POST("/logs/export", adminRoutes.ExportLogs)
	admin.GET("/online-users", adminRoutes.GetOnlineUsers)
	admin.POST("/broadcast", adminRoutes.Broadcast)

	// Websockets
	if cfg.Push.Mode == config.PushModeGateway {
		e.POST("/ws/connect", wsRoutes.HandleConnect, upgradeLimiter)
		e.POST("/ws/disconnect", wsRoutes.HandleDisconnect)
		e.POST("/ws/message", wsRoutes.HandleMessage)
	} else {
		e.GET("/ws", wsRoutes.HandleUpgrade, upgradeLimiter)
	}

	go func() {
		log.Infof("NotifyFlow listening on :%d (push mode %s)", cfg.Port, cfg.Push.Mode)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	// Stops the tracker, dispatcher and cleaners
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown failed: %v", err)
	}
}
