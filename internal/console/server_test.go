package console

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bopopescu/openlava-web/internal/auth"
	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/cluster/upstream"
	"github.com/bopopescu/openlava-web/internal/config"
	"github.com/bopopescu/openlava-web/internal/db"
	"github.com/bopopescu/openlava-web/internal/repository"
)

// wireOK answers as the scheduler interface would: the payload wrapped
// in an OK envelope.
func wireOK(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "OK", "data": v})
}

func wireFail(w http.ResponseWriter, class, message string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "FAIL",
		"data":    map[string]string{"exception_class": class, "message": message},
		"message": message,
	})
}

// wire is the envelope as tests read it back from the console.
type wire struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeWire(t *testing.T, rec *httptest.ResponseRecorder) wire {
	t.Helper()

	var env wire
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func failData(t *testing.T, env wire) map[string]string {
	t.Helper()

	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func newTestServer(t *testing.T, scheduler http.Handler, tweaks ...func(*config.Config)) *Server {
	t.Helper()

	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "olweb.db")))

	if scheduler == nil {
		scheduler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wireFail(w, string(cluster.ClassInterface), "unexpected request: "+r.URL.Path)
		})
	}
	upstreamSrv := httptest.NewServer(scheduler)
	t.Cleanup(upstreamSrv.Close)

	cfg := config.Default
	cfg.ClusterURL = upstreamSrv.URL
	cfg.PollInterval = 50 * time.Millisecond
	cfg.BannerTTL = time.Second
	for _, tweak := range tweaks {
		tweak(&cfg)
	}

	client := upstream.New(upstreamSrv.URL, 5*time.Second)
	return NewServer(&cfg, client, auth.NewTokenManager("console-test-secret", time.Hour))
}

func seedAccount(t *testing.T, username, password string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	_, err = repository.NewAccountRepository().Add(username, hash)
	require.NoError(t, err)
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func postForm(s *Server, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return do(s, req)
}

func login(t *testing.T, s *Server, username, password string) *http.Cookie {
	t.Helper()

	rec := postForm(s, "/accounts/ajax-login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func TestAjaxLoginIssuesToken(t *testing.T) {
	s := newTestServer(t, nil)
	seedAccount(t, "irvined", "topsecret")

	rec := postForm(s, "/accounts/ajax-login", url.Values{
		"username": {"irvined"},
		"password": {"topsecret"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeWire(t, rec)
	assert.Equal(t, "OK", env.Status)
	assert.Equal(t, "User logged in", env.Message)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie missing")
	username, err := s.tokens.Validate(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "irvined", username)
}

func TestAjaxLoginRejectsBadPassword(t *testing.T) {
	s := newTestServer(t, nil)
	seedAccount(t, "irvined", "topsecret")

	rec := postForm(s, "/accounts/ajax-login", url.Values{
		"username": {"irvined"},
		"password": {"nope"},
	})

	require.Equal(t, http.StatusForbidden, rec.Code)
	env := decodeWire(t, rec)
	assert.Equal(t, "FAIL", env.Status)
	assert.Equal(t, "Invalid username or password", env.Message)
	assert.Equal(t, "PermissionDeniedError", failData(t, env)["exception_class"])
}

func TestAjaxLoginRejectsInactiveAccount(t *testing.T) {
	s := newTestServer(t, nil)
	seedAccount(t, "irvined", "topsecret")
	require.NoError(t, repository.NewAccountRepository().SetActive("irvined", false))

	rec := postForm(s, "/accounts/ajax-login", url.Values{
		"username": {"irvined"},
		"password": {"topsecret"},
	})

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "User is inactive", decodeWire(t, rec).Message)
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t, nil)
	seedAccount(t, "irvined", "topsecret")
	cookie := login(t, s, "irvined", "topsecret")

	req := httptest.NewRequest(http.MethodPost, "/accounts/logout", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.AddCookie(cookie)
	rec := do(s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User logged out", decodeWire(t, rec).Message)

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, 1970, cleared.Expires.Year())
}

func TestRequireAuthRedirectsBrowsers(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/queues/normal/open", nil)
	rec := do(s, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/accounts/login?next=%2Fqueues%2Fnormal%2Fopen", rec.Header().Get("Location"))
}

func TestRequireAuthRejectsScripts(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/queues/normal/open", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rec := do(s, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	env := decodeWire(t, rec)
	assert.Equal(t, "FAIL", env.Status)
	assert.Equal(t, "Authentication required", env.Message)
}

func TestRequireAuthRejectsTokenWithoutAccount(t *testing.T) {
	s := newTestServer(t, nil)

	token, err := s.tokens.Generate("ghost")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/queues/normal/open", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := do(s, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Invalid username or password", decodeWire(t, rec).Message)
}

func TestGetTokenForSession(t *testing.T) {
	s := newTestServer(t, nil)
	seedAccount(t, "irvined", "topsecret")
	cookie := login(t, s, "irvined", "topsecret")

	req := httptest.NewRequest(http.MethodGet, "/get-token/", nil)
	req.AddCookie(cookie)
	rec := do(s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeWire(t, rec)

	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	username, err := s.tokens.Validate(data["token"])
	require.NoError(t, err)
	assert.Equal(t, "irvined", username)
}

func TestLoginPageRenders(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/accounts/login", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="login-form"`)
	assert.NotContains(t, rec.Body.String(), "/accounts/oauth/login")
}

func TestOAuthLoginRedirectsToProvider(t *testing.T) {
	s := newTestServer(t, nil, func(cfg *config.Config) {
		cfg.OAuth = config.OAuth{
			ClientID:     "console",
			ClientSecret: "hush",
			AuthURL:      "https://sso.example.com/authorize",
			TokenURL:     "https://sso.example.com/token",
			RedirectURL:  "http://console.example.com/accounts/oauth/callback",
		}
	})

	page := do(s, httptest.NewRequest(http.MethodGet, "/accounts/login", nil))
	assert.Contains(t, page.Body.String(), "/accounts/oauth/login")

	rec := do(s, httptest.NewRequest(http.MethodGet, "/accounts/oauth/login", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "sso.example.com", location.Host)
	assert.Equal(t, "console", location.Query().Get("client_id"))
	assert.NotEmpty(t, location.Query().Get("state"))
}

func TestOAuthCallbackRejectsUnknownState(t *testing.T) {
	s := newTestServer(t, nil, func(cfg *config.Config) {
		cfg.OAuth = config.OAuth{
			ClientID:     "console",
			ClientSecret: "hush",
			AuthURL:      "https://sso.example.com/authorize",
			TokenURL:     "https://sso.example.com/token",
		}
	})

	rec := do(s, httptest.NewRequest(http.MethodGet, "/accounts/oauth/callback?state=forged&json=1", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Unknown login attempt", decodeWire(t, rec).Message)
}

func TestOAuthCallbackProvisionsAccount(t *testing.T) {
	provider := http.NewServeMux()
	provider.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "provider-token",
			"token_type":   "bearer",
		})
	})
	provider.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"username": "newhire"})
	})
	providerSrv := httptest.NewServer(provider)
	defer providerSrv.Close()

	s := newTestServer(t, nil, func(cfg *config.Config) {
		cfg.OAuth = config.OAuth{
			ClientID:     "console",
			ClientSecret: "hush",
			AuthURL:      providerSrv.URL + "/authorize",
			TokenURL:     providerSrv.URL + "/token",
			UserInfoURL:  providerSrv.URL + "/userinfo",
			RedirectURL:  "http://console.example.com/accounts/oauth/callback",
		}
	})

	start := do(s, httptest.NewRequest(http.MethodGet, "/accounts/oauth/login", nil))
	require.Equal(t, http.StatusFound, start.Code)
	location, err := url.Parse(start.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	rec := do(s, httptest.NewRequest(http.MethodGet,
		"/accounts/oauth/callback?state="+state+"&code=grant", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/users/newhire", rec.Header().Get("Location"))

	account, err := repository.NewAccountRepository().GetByUsername("newhire")
	require.NoError(t, err)
	assert.True(t, account.Active)
	assert.Empty(t, account.PasswordHash)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	username, err := s.tokens.Validate(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "newhire", username)
}

func TestStatusReportsUptime(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Contains(t, status, "uptime")
	assert.Contains(t, status, "sessions")
}

func TestStopSignalsChannel(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, httptest.NewRequest(http.MethodPost, "/stop", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-s.StopCh():
	default:
		t.Fatal("stop endpoint did not signal the stop channel")
	}
}

func TestErrorPageShowsClusterFailure(t *testing.T) {
	scheduler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wireFail(w, "NoSuchUserError", "User ghost not found")
	})
	s := newTestServer(t, scheduler)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/users/ghost", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NoSuchUserError")
	assert.Contains(t, rec.Body.String(), "User ghost not found")
}

func TestJSONFailureCarriesExceptionClass(t *testing.T) {
	scheduler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wireFail(w, "NoSuchQueueError", "Queue night does not exist")
	})
	s := newTestServer(t, scheduler)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/queues/night?json=1", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeWire(t, rec)
	assert.Equal(t, "FAIL", env.Status)
	assert.Equal(t, "NoSuchQueueError", failData(t, env)["exception_class"])
	assert.Equal(t, "Queue night does not exist", env.Message)
}
