package console

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/logger"
)

const (
	sessionCookie  = "olweb_token"
	userContextKey = "olweb.username"
)

func currentUser(c echo.Context) string {
	if username, ok := c.Get(userContextKey).(string); ok {
		return username
	}
	return ""
}

func sessionToken(c echo.Context) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return token
		}
	}

	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}

	return ""
}

// attachUser resolves the session token when one is present so pages
// can show the login state. It never rejects a request.
func (s *Server) attachUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token := sessionToken(c); token != "" {
			if username, err := s.tokens.Validate(token); err == nil {
				c.Set(userContextKey, username)
			}
		}
		return next(c)
	}
}

// requireAuth gates the routes that act on the cluster.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := sessionToken(c)
		if token == "" {
			return s.denyAuth(c, "Authentication required")
		}

		username, err := s.tokens.Validate(token)
		if err != nil {
			return s.denyAuth(c, "Authentication required")
		}

		account, err := s.accounts.GetByUsername(username)
		if err != nil {
			return s.denyAuth(c, "Invalid username or password")
		}
		if !account.Active {
			return s.denyAuth(c, "User is inactive")
		}

		c.Set(userContextKey, username)
		return next(c)
	}
}

func (s *Server) denyAuth(c echo.Context, message string) error {
	if wantsJSON(c) {
		return jsonFail(c, cluster.NewError(cluster.ClassPermissionDenied, message))
	}

	next := c.Request().URL.RequestURI()
	return c.Redirect(http.StatusSeeOther, "/accounts/login?next="+url.QueryEscape(next))
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Log.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency.Round(time.Millisecond)))
			return nil
		},
	})
}
