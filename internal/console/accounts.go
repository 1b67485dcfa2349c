package console

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bopopescu/openlava-web/internal/auth"
	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/logger"
)

const (
	msgLoggedIn  = "User logged in"
	msgLoggedOut = "User logged out"
	msgBadLogin  = "Invalid username or password"
	msgInactive  = "User is inactive"
)

func (s *Server) setSessionCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) handleLoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login", map[string]any{
		"Title":   "Log in",
		"User":    currentUser(c),
		"Message": c.QueryParam("message"),
		"Next":    c.QueryParam("next"),
		"OAuth":   s.oauth != nil,
	})
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (s *Server) handleAjaxLogin(c echo.Context) error {
	req := new(loginRequest)
	if err := c.Bind(req); err != nil || req.Username == "" || req.Password == "" {
		return jsonFail(c, cluster.NewError(cluster.ClassPermissionDenied, msgBadLogin))
	}

	account, err := s.accounts.GetByUsername(req.Username)
	if err != nil || !auth.CheckPassword(account.PasswordHash, req.Password) {
		logger.Log.Warn("login rejected",
			zap.String("username", req.Username),
			zap.String("remote", c.RealIP()))
		return jsonFail(c, cluster.NewError(cluster.ClassPermissionDenied, msgBadLogin))
	}
	if !account.Active {
		return jsonFail(c, cluster.NewError(cluster.ClassPermissionDenied, msgInactive))
	}

	token, err := s.tokens.Generate(account.Username)
	if err != nil {
		return jsonFail(c, err)
	}
	s.setSessionCookie(c, token, time.Now().Add(s.tokens.TTL()))

	logger.Log.Info("user logged in", zap.String("username", account.Username))
	return jsonOK(c, map[string]string{"username": account.Username}, msgLoggedIn)
}

func (s *Server) handleLogout(c echo.Context) error {
	s.setSessionCookie(c, "", time.Unix(0, 0))

	if wantsJSON(c) {
		return jsonOK(c, nil, msgLoggedOut)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// handleGetToken hands scripts a fresh bearer token for the session's
// user, for driving the JSON endpoints without cookies.
func (s *Server) handleGetToken(c echo.Context) error {
	token, err := s.tokens.Generate(currentUser(c))
	if err != nil {
		return jsonFail(c, err)
	}

	return jsonOK(c, map[string]string{"token": token}, "")
}

func (s *Server) handleOAuthLogin(c echo.Context) error {
	if s.oauth == nil {
		return s.fail(c, cluster.NewError(cluster.ClassNoSuchResource, "OAuth login is not configured"))
	}

	state, err := auth.State()
	if err != nil {
		return s.fail(c, err)
	}
	s.states.add(state)

	return c.Redirect(http.StatusFound, s.oauth.AuthCodeURL(state))
}

func (s *Server) handleOAuthCallback(c echo.Context) error {
	if s.oauth == nil {
		return s.fail(c, cluster.NewError(cluster.ClassNoSuchResource, "OAuth login is not configured"))
	}
	if !s.states.take(c.QueryParam("state")) {
		return s.fail(c, cluster.NewError(cluster.ClassPermissionDenied, "Unknown login attempt"))
	}

	ctx := c.Request().Context()
	oauthToken, err := s.oauth.Exchange(ctx, c.QueryParam("code"))
	if err != nil {
		return s.fail(c, err)
	}

	username, err := s.oauth.Username(ctx, oauthToken)
	if err != nil {
		return s.fail(c, err)
	}

	account, err := s.accounts.GetByUsername(username)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First provider-backed login; password logins stay impossible
		// for the empty hash.
		if account, err = s.accounts.Add(username, ""); err != nil {
			return s.fail(c, err)
		}
	case err != nil:
		return s.fail(c, err)
	}
	if !account.Active {
		return s.fail(c, cluster.NewError(cluster.ClassPermissionDenied, msgInactive))
	}

	token, err := s.tokens.Generate(account.Username)
	if err != nil {
		return s.fail(c, err)
	}
	s.setSessionCookie(c, token, time.Now().Add(s.tokens.TTL()))

	logger.Log.Info("user logged in",
		zap.String("username", account.Username),
		zap.String("via", "oauth"))

	return c.Redirect(http.StatusSeeOther, "/users/"+account.Username)
}
