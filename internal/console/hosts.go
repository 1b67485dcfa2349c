package console

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bopopescu/openlava-web/internal/logger"
)

const (
	msgHostOpened = "Host opened"
	msgHostClosed = "Host closed"
)

func (s *Server) handleHostList(c echo.Context) error {
	hosts, err := s.cluster.HostList(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}

	if wantsJSON(c) {
		return jsonOK(c, hosts, "")
	}

	return c.Render(http.StatusOK, "hosts", map[string]any{
		"Title":   "Hosts",
		"User":    currentUser(c),
		"Message": c.QueryParam("message"),
		"Hosts":   hosts,
	})
}

func (s *Server) handleHostView(c echo.Context) error {
	host, err := s.cluster.HostInfo(c.Request().Context(), c.Param("name"))
	if err != nil {
		return s.fail(c, err)
	}

	if wantsJSON(c) {
		return jsonOK(c, host, "")
	}

	return c.Render(http.StatusOK, "host_detail", map[string]any{
		"Title":   "Host " + host.HostName,
		"User":    currentUser(c),
		"Message": c.QueryParam("message"),
		"Host":    host,
	})
}

func (s *Server) hostAction(c echo.Context, message string, action func(string) error) error {
	name := c.Param("name")

	if err := action(name); err != nil {
		return s.fail(c, err)
	}

	logger.Log.Info("host action",
		zap.String("host", name),
		zap.String("action", message),
		zap.String("by", currentUser(c)))

	return s.actionDone(c, message, "/hosts/"+name)
}

func (s *Server) handleHostOpen(c echo.Context) error {
	return s.hostAction(c, msgHostOpened, func(name string) error {
		return s.cluster.OpenHost(c.Request().Context(), name)
	})
}

func (s *Server) handleHostClose(c echo.Context) error {
	return s.hostAction(c, msgHostClosed, func(name string) error {
		return s.cluster.CloseHost(c.Request().Context(), name)
	})
}
