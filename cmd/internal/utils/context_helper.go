package utils

import (
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// ContextUserKey is where the auth middleware stores the resolved caller.
const ContextUserKey = "user"

func GetUserFromContext(c echo.Context) (*entity.User, apierror.ErrorResponse) {
	val := c.Get(ContextUserKey)
	if val == nil {
		log.Warnf("route %s attempted to read nil user from context", c.Request().URL)
		return nil, apierror.MissingUserHeaderError
	}

	user, ok := val.(*entity.User)
	if !ok {
		log.Warnf("expected user type at 'user' context key, got %v", user)
		return nil, apierror.InternalServerError
	}
	return user, nil
}
