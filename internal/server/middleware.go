package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/auth"
	"github.com/nashtech/odmat/internal/metrics"
)

const claimsKey = "auth.claims"

// requestLog writes one zap entry per request after the handler returns.
func requestLog(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			begin := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the status before it is logged.
				c.Error(err)
			}
			req := c.Request()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("route", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("elapsed", time.Since(begin)),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			log.Debug("http request", fields...)
			return nil
		}
	}
}

// observeDuration records handler latency per route and status.
func observeDuration(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		begin := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		metrics.HTTPDuration.
			WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(c.Response().Status)).
			Observe(time.Since(begin).Seconds())
		return nil
	}
}

// requireToken rejects requests without a valid bearer token and stores
// the parsed claims on the context.
func requireToken(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return auth.ErrInvalidToken
			}
			claims, err := svc.ParseToken(token)
			if err != nil {
				return err
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// userID returns the authenticated user id set by requireToken.
func userID(c echo.Context) (int64, error) {
	claims, ok := c.Get(claimsKey).(*auth.Claims)
	if !ok {
		return 0, auth.ErrInvalidToken
	}
	return claims.UserID()
}
