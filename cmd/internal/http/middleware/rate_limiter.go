package middleware

import (
	"net/http"
	"notifyflow/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

var tooManyUpgradesError = apierror.NewSimple(http.StatusTooManyRequests, "Too many connection attempts")

// NewUpgradeRateLimiter throttles websocket upgrades per client IP, allowing
// bursts of twice the rate.
func NewUpgradeRateLimiter(perSecond float64) echo.MiddlewareFunc {
	burst := int(perSecond * 2)
	if burst < 1 {
		burst = 1
	}

	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(perSecond),
		Burst: burst,
	})

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(tooManyUpgradesError.Code(), tooManyUpgradesError)
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return c.JSON(http.StatusForbidden, apierror.NewSimple(http.StatusForbidden, "Unable to identify client"))
		},
	})
}
