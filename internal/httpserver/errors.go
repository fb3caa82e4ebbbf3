package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const unexpectedMessage = "Unexpected error occurred"

var statusBySentinel = []struct {
	err  error
	code int
}{
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrOutOfStock, http.StatusConflict},
	{service.ErrInvalidArgument, http.StatusBadRequest},
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrUnauthorized, http.StatusForbidden},
}

// statusFor maps a service error to its status and the client-facing part
// of the message. Anything unknown is a 500 with a fixed message.
func statusFor(err error) (int, string) {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			msg := err.Error()
			prefix := s.err.Error() + ": "
			if i := strings.Index(msg, prefix); i >= 0 {
				msg = msg[i+len(prefix):]
			}
			return s.code, msg
		}
	}
	return http.StatusInternalServerError, unexpectedMessage
}

// fail logs a failed operation and turns err into what ErrorHandler renders.
func fail(l *slog.Logger, op string, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", "validation", "error", err)
		return ve
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		l.Warn(op+"_error", "status", he.Code, "reason", fmt.Sprint(he.Message), "error", err)
		return he
	}

	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		l.Error(op+"_error", "status", code, "reason", "internal error", "error", err)
	} else {
		l.Warn(op+"_error", "status", code, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(code, msg).SetInternal(err)
}

// ErrorHandler renders every error as {"status","message"}, or as
// {"status","errors"} for field validation failures.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code int
		body any
		ve   *service.ValidationError
		he   *echo.HTTPError
	)
	switch {
	case errors.As(err, &ve):
		code = http.StatusBadRequest
		body = transport.FieldErrorResponse{Status: code, Errors: ve.Fields}
	case errors.As(err, &he):
		code = he.Code
		msg := fmt.Sprint(he.Message)
		if code >= http.StatusInternalServerError {
			msg = unexpectedMessage
		}
		body = transport.ErrorResponse{Status: code, Message: msg}
	default:
		var msg string
		code, msg = statusFor(err)
		body = transport.ErrorResponse{Status: code, Message: msg}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}
