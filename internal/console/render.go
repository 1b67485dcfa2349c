package console

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bopopescu/openlava-web/internal/cluster"
)

// Responses wear the cluster interface's envelope so scripts can treat
// the console and the scheduler's own REST service alike.
type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// wantsJSON picks the JSON rendition for ?json=1 requests and for
// XMLHttpRequest callers.
func wantsJSON(c echo.Context) bool {
	if c.QueryParam("json") != "" {
		return true
	}
	return c.Request().Header.Get("X-Requested-With") == "XMLHttpRequest"
}

func jsonOK(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, envelope{Status: "OK", Data: data, Message: message})
}

func classify(err error) *cluster.Error {
	if ce, ok := errors.AsType[*cluster.Error](err); ok {
		return ce
	}
	return cluster.NewError(cluster.ClassInterface, err.Error())
}

func jsonFail(c echo.Context, err error) error {
	ce := classify(err)
	return c.JSON(ce.HTTPStatus(), envelope{
		Status: "FAIL",
		Data: map[string]string{
			"exception_class": string(ce.Class),
			"message":         ce.Message,
		},
		Message: ce.Message,
	})
}

func (s *Server) fail(c echo.Context, err error) error {
	if wantsJSON(c) {
		return jsonFail(c, err)
	}

	ce := classify(err)
	return c.Render(ce.HTTPStatus(), "error", map[string]any{
		"Title":   "Error",
		"User":    currentUser(c),
		"Class":   string(ce.Class),
		"Message": ce.Message,
	})
}

// actionDone answers a completed action: envelope for scripts, a
// redirect carrying the outcome message for browsers.
func (s *Server) actionDone(c echo.Context, message, fallback string) error {
	if wantsJSON(c) {
		return jsonOK(c, nil, message)
	}

	target := c.Request().Referer()
	if target == "" {
		target = fallback
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}

	return c.Redirect(http.StatusSeeOther, target+sep+"message="+url.QueryEscape(message))
}

type pageInfo struct {
	Number  int  `json:"number"`
	Pages   int  `json:"pages"`
	Total   int  `json:"total"`
	Prev    int  `json:"prev"`
	Next    int  `json:"next"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

func paginate[T any](items []T, number, size int) ([]T, pageInfo) {
	if size <= 0 {
		size = 25
	}

	pages := (len(items) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}

	start := (number - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}

	return items[start:end], pageInfo{
		Number:  number,
		Pages:   pages,
		Total:   len(items),
		Prev:    number - 1,
		Next:    number + 1,
		HasPrev: number > 1,
		HasNext: number < pages,
	}
}
