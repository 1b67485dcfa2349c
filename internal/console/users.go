package console

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/console/liveview"
	"github.com/bopopescu/openlava-web/internal/dashboard"
	"github.com/bopopescu/openlava-web/internal/logger"
)

func (s *Server) handleUserList(c echo.Context) error {
	users, err := s.cluster.UserList(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}

	if wantsJSON(c) {
		return jsonOK(c, users, "")
	}

	return c.Render(http.StatusOK, "users", map[string]any{
		"Title":   "Users",
		"User":    currentUser(c),
		"Message": c.QueryParam("message"),
		"Users":   users,
	})
}

func (s *Server) handleUserView(c echo.Context) error {
	name := c.Param("name")

	snap, err := s.cluster.UserStatus(c.Request().Context(), name)
	if err != nil {
		return s.fail(c, err)
	}

	if wantsJSON(c) {
		return jsonOK(c, snap, "")
	}

	rows := make([]template.HTML, 0, s.cfg.TableRows)
	for _, row := range liveview.RenderBody(snap.Jobs, s.cfg.TableRows) {
		rows = append(rows, template.HTML(row))
	}

	return c.Render(http.StatusOK, "user_detail", map[string]any{
		"Title":    "User " + snap.Name,
		"User":     currentUser(c),
		"Message":  c.QueryParam("message"),
		"Target":   snap,
		"Rows":     rows,
		"OpenLava": snap.ClusterType == cluster.TypeOpenLava,
	})
}

func (s *Server) handleUserHistory(c echo.Context) error {
	name := c.Param("name")

	events, err := s.events.RecentForUser(name, 500)
	if err != nil {
		return s.fail(c, err)
	}

	if wantsJSON(c) {
		return jsonOK(c, events, "")
	}

	number, _ := strconv.Atoi(c.QueryParam("page"))
	pageEvents, info := paginate(events, number, s.cfg.PageSize)

	return c.Render(http.StatusOK, "user_history", map[string]any{
		"Title":  "History for " + name,
		"User":   currentUser(c),
		"Name":   name,
		"Events": pageEvents,
		"Page":   info,
	})
}

// handleUserLive upgrades to a websocket and streams DOM patches from
// a dedicated refresh session until the browser goes away.
func (s *Server) handleUserLive(c echo.Context) error {
	name := c.Param("name")

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade live view: %w", err)
	}

	surface := liveview.NewSurface(64)
	sess := dashboard.NewSession(dashboard.Options{
		User:        name,
		Fetcher:     s.cluster,
		Detail:      s.cluster,
		Surface:     surface,
		Recorder:    s.recorder,
		Interval:    s.cfg.PollInterval,
		BannerTTL:   s.cfg.BannerTTL,
		TableRows:   s.cfg.TableRows,
		DetailRate:  s.cfg.DetailRate,
		DetailBurst: s.cfg.DetailBurst,
	})
	s.live.Register(sess)
	sess.Start(context.Background())

	logger.Log.Info("live view attached",
		zap.String("user", name),
		zap.String("remote", c.RealIP()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case patch, ok := <-surface.Patches():
				if !ok {
					return
				}
				if err := conn.WriteJSON(patch); err != nil {
					logger.Log.Debug("live view write failed", zap.Error(err))
					return
				}
			case <-ping.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Browsers send nothing; the first read error means the tab is gone.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	sess.Stop()
	s.live.Unregister(sess)
	surface.Close()
	<-done
	_ = conn.Close()

	logger.Log.Info("live view detached", zap.String("user", name))
	return nil
}
