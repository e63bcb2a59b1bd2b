package middleware

import (
	"net/http"
	"strings"

	"github.com/HyunsDev/opize-calendar2notion-server/core/cache"
	"github.com/HyunsDev/opize-calendar2notion-server/core/controller"
	"github.com/HyunsDev/opize-calendar2notion-server/core/errors"
	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"
	"github.com/HyunsDev/opize-calendar2notion-server/core/utils"

	"github.com/labstack/echo/v4"
)

// ContextKeyTokenData is where AuthMiddleware stores the authenticated context.
const ContextKeyTokenData = "token_data"

type Middleware struct {
	cache cache.Cache
}

func NewMiddleware(c cache.Cache) *Middleware {
	return &Middleware{cache: c}
}

// AuthMiddleware validates the bearer token and stores the authenticated
// context on the echo context. User resolution stays with the handlers.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return c.JSON(http.StatusUnauthorized,
					controller.NewErrorBody(errors.ErrUnauthorized, "missing authorization header"))
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header {
				return c.JSON(http.StatusUnauthorized,
					controller.NewErrorBody(errors.ErrUnauthorized, "invalid authorization header format"))
			}

			blacklisted, err := m.cache.IsTokenBlacklisted(c.Request().Context(), token)
			if err != nil {
				logger.Error("Middleware:Auth:IsTokenBlacklisted:Error", "error", err)
				return c.JSON(http.StatusInternalServerError,
					controller.NewErrorBody(errors.ErrInternalServer, "failed to check token"))
			}
			if blacklisted {
				return c.JSON(http.StatusUnauthorized,
					controller.NewErrorBody(errors.ErrUnauthorized, "token is blacklisted"))
			}

			tokenData, err := utils.ValidateAndParseToken(token)
			if err != nil {
				logger.Warn("Middleware:Auth:ValidateAndParseToken:Error", "error", err)
				return c.JSON(http.StatusUnauthorized,
					controller.NewErrorBody(errors.ErrUnauthorized, "invalid token"))
			}

			c.Set(ContextKeyTokenData, tokenData)
			return next(c)
		}
	}
}

// AdminMiddleware requires an authenticated admin token. Must run after
// AuthMiddleware.
func (m *Middleware) AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenData, ok := c.Get(ContextKeyTokenData).(*utils.TokenData)
			if !ok || tokenData == nil {
				return c.JSON(http.StatusUnauthorized,
					controller.NewErrorBody(errors.ErrUnauthorized, "not authenticated"))
			}
			if !tokenData.IsAdmin {
				return c.JSON(http.StatusForbidden,
					controller.NewErrorBody(errors.ErrForbidden, "admin only"))
			}
			return next(c)
		}
	}
}

// TokenDataFromContext returns the authenticated context set by AuthMiddleware.
func TokenDataFromContext(c echo.Context) (*utils.TokenData, bool) {
	tokenData, ok := c.Get(ContextKeyTokenData).(*utils.TokenData)
	return tokenData, ok && tokenData != nil
}
