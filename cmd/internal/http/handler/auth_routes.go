package handler

import (
	"net/http"
	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type AuthService interface {
	Register(req *contract.RegisterRequest) (*contract.AuthResponse, apierror.ErrorResponse)
	Login(req *contract.LoginRequest) (*contract.AuthResponse, apierror.ErrorResponse)
}

type DemoService interface {
	Start() *contract.DemoSession
	Logout(req *contract.DemoLogoutRequest) apierror.ErrorResponse
}

type DefaultAuthRoute struct {
	AuthService AuthService
	DemoService DemoService
}

func NewAuthDefault(authService AuthService, demoService DemoService) *DefaultAuthRoute {
	return &DefaultAuthRoute{
		AuthService: authService,
		DemoService: demoService,
	}
}

func (a *DefaultAuthRoute) Register(c echo.Context) error {
	var req contract.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := a.AuthService.Register(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (a *DefaultAuthRoute) Login(c echo.Context) error {
	var req contract.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := a.AuthService.Login(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *DefaultAuthRoute) StartDemo(c echo.Context) error {
	session := a.DemoService.Start()
	resp := echo.Map{"session": session}
	return c.JSON(http.StatusCreated, &resp)
}

func (a *DefaultAuthRoute) LogoutDemo(c echo.Context) error {
	var req contract.DemoLogoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := a.DemoService.Logout(&req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, &contract.OKResponse{OK: true})
}
