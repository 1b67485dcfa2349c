package console

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/bopopescu/openlava-web/internal/auth"
	"github.com/bopopescu/openlava-web/internal/cluster/upstream"
	"github.com/bopopescu/openlava-web/internal/config"
	"github.com/bopopescu/openlava-web/internal/console/liveview"
	"github.com/bopopescu/openlava-web/internal/dashboard"
	"github.com/bopopescu/openlava-web/internal/logger"
	"github.com/bopopescu/openlava-web/internal/repository"
)

type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	cluster   *upstream.Client
	tokens    *auth.TokenManager
	oauth     *auth.OAuthProvider
	live      *liveview.Manager
	accounts  *repository.AccountRepository
	events    *repository.EventRepository
	failures  *repository.FailureRepository
	recorder  dashboard.Recorder
	upgrader  websocket.Upgrader
	states    *stateStore
	startedAt time.Time
	stopCh    chan struct{}
}

func NewServer(cfg *config.Config, client *upstream.Client, tokens *auth.TokenManager) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Renderer = newRenderer()

	s := &Server{
		echo:      e,
		cfg:       cfg,
		cluster:   client,
		tokens:    tokens,
		live:      liveview.NewManager(),
		accounts:  repository.NewAccountRepository(),
		events:    repository.NewEventRepository(),
		failures:  repository.NewFailureRepository(),
		upgrader:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		states:    newStateStore(),
		startedAt: time.Now(),
		stopCh:    make(chan struct{}, 1),
	}
	s.recorder = &dbRecorder{events: s.events, failures: s.failures}
	if cfg.OAuth.Enabled() {
		s.oauth = auth.NewOAuthProvider(cfg.OAuth)
	}

	e.Use(s.attachUser)
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	// For the entire console
	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/status", s.handleStatus)
	s.echo.POST("/stop", s.handleStop)
	s.echo.GET("/get-token/", s.handleGetToken, s.requireAuth)

	sys := s.echo.Group("/system")
	sys.GET("/overview/hosts", s.handleOverviewHosts)
	sys.GET("/overview/jobs", s.handleOverviewJobs)
	sys.GET("/overview/slots", s.handleOverviewSlots)
	sys.GET("/failures", s.handleRecentFailures)

	users := s.echo.Group("/users")
	users.GET("/", s.handleUserList)
	users.GET("/:name", s.handleUserView)
	users.GET("/:name/live", s.handleUserLive)
	users.GET("/:name/history", s.handleUserHistory)

	jobs := s.echo.Group("/jobs")
	jobs.GET("/", s.handleJobList)
	jobs.GET("/submit", s.handleJobSubmitForm, s.requireAuth)
	jobs.POST("/submit", s.handleJobSubmit, s.requireAuth)
	jobs.GET("/:id", s.handleJobArray)
	jobs.GET("/:id/:idx", s.handleJobView)
	jobs.GET("/:id/:idx/output", s.handleJobOutput)
	jobs.GET("/:id/:idx/error", s.handleJobErrorFile)
	jobs.POST("/:id/:idx/kill", s.handleJobKill, s.requireAuth)
	jobs.POST("/:id/:idx/suspend", s.handleJobSuspend, s.requireAuth)
	jobs.POST("/:id/:idx/resume", s.handleJobResume, s.requireAuth)
	jobs.POST("/:id/:idx/requeue", s.handleJobRequeue, s.requireAuth)

	queues := s.echo.Group("/queues")
	queues.GET("/", s.handleQueueList)
	queues.GET("/:name", s.handleQueueView)
	queues.POST("/:name/open", s.handleQueueOpen, s.requireAuth)
	queues.POST("/:name/close", s.handleQueueClose, s.requireAuth)
	queues.POST("/:name/activate", s.handleQueueActivate, s.requireAuth)
	queues.POST("/:name/inactivate", s.handleQueueInactivate, s.requireAuth)

	hosts := s.echo.Group("/hosts")
	hosts.GET("/", s.handleHostList)
	hosts.GET("/:name", s.handleHostView)
	hosts.POST("/:name/open", s.handleHostOpen, s.requireAuth)
	hosts.POST("/:name/close", s.handleHostClose, s.requireAuth)

	accounts := s.echo.Group("/accounts")
	accounts.GET("/login", s.handleLoginPage)
	accounts.POST("/ajax-login", s.handleAjaxLogin)
	accounts.POST("/logout", s.handleLogout)
	accounts.GET("/oauth/login", s.handleOAuthLogin)
	accounts.GET("/oauth/callback", s.handleOAuthCallback)
}

func (s *Server) Start() {
	go func() {
		addr := ":" + strconv.Itoa(s.cfg.Port)
		logger.Log.Info("console server started",
			zap.String("addr", addr),
			zap.String("cluster_url", s.cfg.ClusterURL))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("console server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	s.live.StopAll()
	return s.echo.Shutdown(ctx)
}

func (s *Server) StopCh() <-chan struct{} {
	return s.stopCh
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"uptime":   time.Since(s.startedAt).Round(time.Second).String(),
		"sessions": s.live.Snapshots(),
	})
}

func (s *Server) handleStop(c echo.Context) error {
	s.stopCh <- struct{}{}
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

func (s *Server) handleRecentFailures(c echo.Context) error {
	failures, err := s.failures.Recent(100)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{"failures": failures})
}

// stateStore tracks outstanding OAuth login round trips.
type stateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

func newStateStore() *stateStore {
	return &stateStore{states: make(map[string]time.Time)}
}

func (st *stateStore) add(state string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for s, issued := range st.states {
		if time.Since(issued) > 10*time.Minute {
			delete(st.states, s)
		}
	}
	st.states[state] = time.Now()
}

func (st *stateStore) take(state string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	issued, ok := st.states[state]
	if ok {
		delete(st.states, state)
	}

	return ok && time.Since(issued) <= 10*time.Minute
}
