package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// problem is the RFC 7807 document returned for every non-2xx response.
type problem struct {
	Type          string `json:"type"`
	Title         string `json:"title"`
	Status        int    `json:"status"`
	Detail        string `json:"detail"`
	CorrelationID string `json:"correlation_id"`
}

// newProblem builds an envelope with a fresh correlation id. The id ties
// the response a user sees to the server-side log line for it.
func newProblem(status int, title, detail string) problem {
	return problem{
		Type:          "about:blank",
		Title:         title,
		Status:        status,
		Detail:        detail,
		CorrelationID: uuid.NewString(),
	}
}

// ProblemHandler returns an echo.HTTPErrorHandler that renders every
// error as the uniform envelope. Unknown errors, including recovered
// panics, degrade to a fixed 500 shape with no internal detail.
func ProblemHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var p problem
		var apiErr *Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &apiErr):
			p = newProblem(apiErr.Status, apiErr.Title, apiErr.Detail)
		case errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError:
			// Router-level errors: unknown route, unsupported method.
			detail := http.StatusText(httpErr.Code)
			if msg, ok := httpErr.Message.(string); ok {
				detail = msg
			}
			p = newProblem(httpErr.Code, http.StatusText(httpErr.Code), detail)
		default:
			internal := errInternal()
			p = newProblem(internal.Status, internal.Title, internal.Detail)
		}

		req := c.Request()
		fields := log.Fields{
			"correlation_id": p.CorrelationID,
			"status":         p.Status,
			"title":          p.Title,
			"detail":         p.Detail,
			"method":         req.Method,
			"path":           req.URL.Path,
		}
		entry := logger.WithFields(fields)
		if p.Status >= http.StatusInternalServerError {
			// Keep the cause server-side only.
			entry.WithError(err).Error("request failed")
		} else {
			entry.Warn("request rejected")
		}

		if err := c.JSON(p.Status, p); err != nil {
			logger.WithError(err).Error("write error envelope")
		}
	}
}
