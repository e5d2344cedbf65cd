package middleware

import (
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/domain/policy"
	"notifyflow/cmd/internal/utils"
	"notifyflow/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

const HeaderUserID = "X-User-Id"

type Authenticator interface {
	Authenticate(rawID string) (*entity.User, apierror.ErrorResponse)
}

type AuthMiddlewareConfig struct {
	Auth Authenticator
}

// NewAuthMiddleware resolves the caller from the x-user-id header and stores
// it under utils.ContextUserKey.
func NewAuthMiddleware(cfg *AuthMiddlewareConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, apierr := cfg.Auth.Authenticate(c.Request().Header.Get(HeaderUserID))
			if apierr != nil {
				return c.JSON(apierr.Code(), apierr)
			}

			c.Set(utils.ContextUserKey, user)
			return next(c)
		}
	}
}

// NewAdminMiddleware must run after NewAuthMiddleware.
func NewAdminMiddleware(userPolicy *policy.UserPolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, cerr := utils.GetUserFromContext(c)
			if cerr != nil {
				return c.JSON(cerr.Code(), cerr)
			}

			if perr := userPolicy.IsAdmin(user); perr != nil {
				return c.JSON(perr.Code(), perr)
			}
			return next(c)
		}
	}
}
