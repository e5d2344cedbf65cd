package handler

import (
	"net/http"
	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/utils"
	"notifyflow/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type SystemService interface {
	GetStatus() *contract.SystemStatus
	GetWorkers(actor *entity.User) ([]*contract.WorkerResponse, apierror.ErrorResponse)
}

type DefaultSystemRoute struct {
	SystemService SystemService
}

func NewSystemDefault(systemService SystemService) *DefaultSystemRoute {
	return &DefaultSystemRoute{SystemService: systemService}
}

func (s *DefaultSystemRoute) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.SystemService.GetStatus())
}

func (s *DefaultSystemRoute) GetWorkers(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	workers, apierr := s.SystemService.GetWorkers(user)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"workers": workers}
	return c.JSON(http.StatusOK, &resp)
}

// HealthCheck is used by the load balancer and the Docker Compose healthcheck.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, &contract.OKResponse{OK: true})
}
