package ratelimit

import (
	"math"
	"strconv"

	"github.com/freitasmatheusrn/olist-helper/pkg/rest"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Middleware rejects callers over the limit with 429. keyFunc picks the
// client identity. Store failures let the request through.
func Middleware(l *Limiter, keyFunc func(echo.Context) string, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := keyFunc(c)
			decision, err := l.Allow(c.Request().Context(), key)
			if err != nil {
				logger.Warn("rate limit store unavailable",
					zap.String("key", key),
					zap.Error(err),
				)
				return next(c)
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Requests))
			if !decision.Allowed {
				seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
				c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(seconds))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return rest.NewTooManyRequestsError("muitas requisições, tente novamente em instantes")
			}

			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			return next(c)
		}
	}
}
