package handler

import (
	"net/http"
	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/utils"
	"notifyflow/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type DashboardService interface {
	GetStats(actor *entity.User) (*contract.DashboardStats, apierror.ErrorResponse)
	GetEvents(actor *entity.User) ([]*contract.EventResponse, apierror.ErrorResponse)
	GetNotifications(actor *entity.User) ([]*contract.NotificationResponse, apierror.ErrorResponse)
	GetAnalytics(actor *entity.User) ([]*contract.AnalyticsPoint, apierror.ErrorResponse)
}

type EventService interface {
	TriggerEvent(actor *entity.User, req *contract.TriggerEventRequest) (*contract.EventResponse, apierror.ErrorResponse)
	Broadcast(actor *entity.User, req *contract.BroadcastRequest) (*contract.BroadcastResponse, apierror.ErrorResponse)
	SystemBroadcast(actor *entity.User, req *contract.BroadcastRequest) (*contract.BroadcastResponse, apierror.ErrorResponse)
}

type DefaultDashboardRoute struct {
	DashboardService DashboardService
	EventService     EventService
}

func NewDashboardDefault(dashboardService DashboardService, eventService EventService) *DefaultDashboardRoute {
	return &DefaultDashboardRoute{
		DashboardService: dashboardService,
		EventService:     eventService,
	}
}

func (d *DefaultDashboardRoute) GetStats(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	stats, apierr := d.DashboardService.GetStats(user)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, stats)
}

func (d *DefaultDashboardRoute) GetEvents(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	events, apierr := d.DashboardService.GetEvents(user)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"events": events}
	return c.JSON(http.StatusOK, &resp)
}

func (d *DefaultDashboardRoute) GetNotifications(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	notifications, apierr := d.DashboardService.GetNotifications(user)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"notifications": notifications}
	return c.JSON(http.StatusOK, &resp)
}

func (d *DefaultDashboardRoute) GetAnalytics(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	points, apierr := d.DashboardService.GetAnalytics(user)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"points": points}
	return c.JSON(http.StatusOK, &resp)
}

func (d *DefaultDashboardRoute) TriggerEvent(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.TriggerEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	event, apierr := d.EventService.TriggerEvent(user, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"event": event}
	return c.JSON(http.StatusCreated, &resp)
}

func (d *DefaultDashboardRoute) Broadcast(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.BroadcastRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := d.EventService.Broadcast(user, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}
