package handler

import (
	"context"
	"net/http"
	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/utils"
	"notifyflow/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type AdminService interface {
	GetStats() (*contract.AdminStats, apierror.ErrorResponse)
	GetUsers() ([]*contract.AdminUserResponse, apierror.ErrorResponse)
	SetSuspended(ctx context.Context, actor *entity.User, targetID int64, req *contract.SuspendRequest) apierror.ErrorResponse
	SetRole(actor *entity.User, targetID int64, req *contract.RoleRequest) apierror.ErrorResponse
	DeleteUser(ctx context.Context, actor *entity.User, targetID int64) apierror.ErrorResponse
	GetLogs() ([]*contract.LogResponse, apierror.ErrorResponse)
	GetOnlineUsers(ctx context.Context) (*contract.PresenceSnapshot, apierror.ErrorResponse)
	ExportLogs(ctx context.Context, actor *entity.User) (*contract.LogExportResponse, apierror.ErrorResponse)
}

type DefaultAdminRoute struct {
	AdminService AdminService
	EventService EventService
}

func NewAdminDefault(adminService AdminService, eventService EventService) *DefaultAdminRoute {
	return &DefaultAdminRoute{
		AdminService: adminService,
		EventService: eventService,
	}
}

func (a *DefaultAdminRoute) GetStats(c echo.Context) error {
	stats, apierr := a.AdminService.GetStats()
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, stats)
}

func (a *DefaultAdminRoute) GetUsers(c echo.Context) error {
	users, apierr := a.AdminService.GetUsers()
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"users": users}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAdminRoute) SuspendUser(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.SuspendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	targetID := utils.ParseID(c.Param("id"))
	if apierr := a.AdminService.SetSuspended(c.Request().Context(), user, targetID, &req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, &contract.OKResponse{OK: true})
}

func (a *DefaultAdminRoute) UpdateRole(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.RoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	targetID := utils.ParseID(c.Param("id"))
	if apierr := a.AdminService.SetRole(user, targetID, &req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, &contract.OKResponse{OK: true})
}

func (a *DefaultAdminRoute) DeleteUser(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	targetID := utils.ParseID(c.Param("id"))
	if apierr := a.AdminService.DeleteUser(c.Request().Context(), user, targetID); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, &contract.OKResponse{OK: true})
}

func (a *DefaultAdminRoute) GetLogs(c echo.Context) error {
	logs, apierr := a.AdminService.GetLogs()
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"logs": logs}
	return c.JSON(http.StatusOK, &resp)
}

// GetOnlineUsers answers with exactly the payload pushed as presence:update.
func (a *DefaultAdminRoute) GetOnlineUsers(c echo.Context) error {
	snap, apierr := a.AdminService.GetOnlineUsers(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, snap)
}

func (a *DefaultAdminRoute) Broadcast(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.BroadcastRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := a.EventService.SystemBroadcast(user, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (a *DefaultAdminRoute) ExportLogs(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	resp, apierr := a.AdminService.ExportLogs(c.Request().Context(), user)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}
