package console

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bopopescu/openlava-web/internal/logger"
)

const (
	msgQueueOpened      = "Queue opened"
	msgQueueClosed      = "Queue closed"
	msgQueueActivated   = "Queue activated"
	msgQueueInactivated = "Queue inactivated"
)

func (s *Server) handleQueueList(c echo.Context) error {
	queues, err := s.cluster.QueueList(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}

	if wantsJSON(c) {
		return jsonOK(c, queues, "")
	}

	return c.Render(http.StatusOK, "queues", map[string]any{
		"Title":   "Queues",
		"User":    currentUser(c),
		"Message": c.QueryParam("message"),
		"Queues":  queues,
	})
}

func (s *Server) handleQueueView(c echo.Context) error {
	queue, err := s.cluster.QueueInfo(c.Request().Context(), c.Param("name"))
	if err != nil {
		return s.fail(c, err)
	}

	if wantsJSON(c) {
		return jsonOK(c, queue, "")
	}

	return c.Render(http.StatusOK, "queue_detail", map[string]any{
		"Title":   "Queue " + queue.Name,
		"User":    currentUser(c),
		"Message": c.QueryParam("message"),
		"Queue":   queue,
	})
}

func (s *Server) queueAction(c echo.Context, message string, action func(string) error) error {
	name := c.Param("name")

	if err := action(name); err != nil {
		return s.fail(c, err)
	}

	logger.Log.Info("queue action",
		zap.String("queue", name),
		zap.String("action", message),
		zap.String("by", currentUser(c)))

	return s.actionDone(c, message, "/queues/"+name)
}

func (s *Server) handleQueueOpen(c echo.Context) error {
	return s.queueAction(c, msgQueueOpened, func(name string) error {
		return s.cluster.OpenQueue(c.Request().Context(), name)
	})
}

func (s *Server) handleQueueClose(c echo.Context) error {
	return s.queueAction(c, msgQueueClosed, func(name string) error {
		return s.cluster.CloseQueue(c.Request().Context(), name)
	})
}

func (s *Server) handleQueueActivate(c echo.Context) error {
	return s.queueAction(c, msgQueueActivated, func(name string) error {
		return s.cluster.ActivateQueue(c.Request().Context(), name)
	})
}

func (s *Server) handleQueueInactivate(c echo.Context) error {
	return s.queueAction(c, msgQueueInactivated, func(name string) error {
		return s.cluster.InactivateQueue(c.Request().Context(), name)
	})
}
