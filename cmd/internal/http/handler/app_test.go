package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/domain/policy"
	"notifyflow/cmd/internal/domain/sqlite"
	"notifyflow/cmd/internal/domain/sqlite/repository"
	mw "notifyflow/cmd/internal/http/middleware"
	"notifyflow/cmd/internal/infrastructure/socket"
	"notifyflow/cmd/internal/presence"
	"notifyflow/cmd/internal/service"
	"notifyflow/cmd/internal/utils/uid"
	"notifyflow/cmd/internal/utils/validators"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	e       *echo.Echo
	users   *repository.DefaultUserRepository
	conns   *repository.DefaultConnectionRepository
	hub     *socket.Hub
	tracker *presence.Tracker
}

// newTestApp wires the real services over an in-memory database with the
// in-process websocket hub as push transport.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	require.NoError(t, uid.Init(1))

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	validate := validator.New()
	validators.Register(validate)

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	logRepo := repository.NewLogRepository(db)
	connRepo := repository.NewConnectionRepository(db)

	hub := socket.NewHub()
	userPolicy := policy.NewUserPolicy()
	audit := service.NewAuditLogger(logRepo)
	authService := service.NewAuthService(userRepo, validate, audit)
	demoService := service.NewDemoService()
	dashboardService := service.NewDashboardService(userRepo, eventRepo, notificationRepo)
	systemService := service.NewSystemService("test-region", eventRepo, notificationRepo)
	eventService := service.NewEventService(userRepo, eventRepo, notificationRepo, validate, audit)

	wsService := service.NewWebSocketService(connRepo, hub)
	tracker := presence.NewTracker(service.NewIdentityService(userRepo), wsService)
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

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go tracker.Run(ctx)
	go wsService.StartDispatcher(ctx)

	authRoutes := NewAuthDefault(authService, demoService)
	dashboardRoutes := NewDashboardDefault(dashboardService, eventService)
	systemRoutes := NewSystemDefault(systemService)
	adminRoutes := NewAdminDefault(adminService, eventService)
	wsRoutes := NewWSDefault(wsService, hub, []string{"http://localhost:3000"})

	authMiddleware := mw.NewAuthMiddleware(&mw.AuthMiddlewareConfig{Auth: authService})
	adminMiddleware := mw.NewAdminMiddleware(userPolicy)

	e := echo.New()
	e.POST("/api/auth/register", authRoutes.Register)
	e.POST("/api/auth/login", authRoutes.Login)
	e.POST("/api/demo/start", authRoutes.StartDemo)
	e.POST("/api/demo/logout", authRoutes.LogoutDemo)
	e.GET("/api/system/status", systemRoutes.GetStatus)
	e.GET("/health", HealthCheck)

	api := e.Group("/api", authMiddleware)
	api.GET("/dashboard/stats", dashboardRoutes.GetStats)
	api.GET("/dashboard/events", dashboardRoutes.GetEvents)
	api.GET("/dashboard/notifications", dashboardRoutes.GetNotifications)
	api.GET("/dashboard/analytics", dashboardRoutes.GetAnalytics)
	api.GET("/system/workers", systemRoutes.GetWorkers)
	api.POST("/events/trigger", dashboardRoutes.TriggerEvent)
	api.POST("/broadcasts", dashboardRoutes.Broadcast, adminMiddleware)

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

	e.GET("/ws", wsRoutes.HandleUpgrade)
	e.POST("/ws/connect", wsRoutes.HandleConnect)
	e.POST("/ws/disconnect", wsRoutes.HandleDisconnect)
	e.POST("/ws/message", wsRoutes.HandleMessage)

	return &testApp{e: e, users: userRepo, conns: connRepo, hub: hub, tracker: tracker}
}

func (a *testApp) addUser(t *testing.T, name, email string, role entity.Role, active bool) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &entity.User{Name: name, Email: email, Role: role, Active: active, PasswordHash: string(hash)}
	require.NoError(t, a.users.Save(user))
	return user
}

// do sends a request as user (nil for anonymous) and returns the recorder.
func (a *testApp) do(method, path string, user *entity.User, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != nil {
		req.Header.Set(mw.HeaderUserID, strconv.FormatInt(user.ID, 10))
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}
