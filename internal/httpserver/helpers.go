package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/aquashop/internal/service"
	"github.com/Skotchmaster/aquashop/internal/util"
	authmw "github.com/Skotchmaster/aquashop/pkg/middleware/auth"
	"github.com/Skotchmaster/aquashop/pkg/tokens"
)

func callerFrom(c echo.Context) (service.Caller, error) {
	userID, err := uuid.Parse(authmw.UserID(c))
	if err != nil {
		return service.Caller{}, service.ErrUnauthorized
	}
	return service.Caller{
		UserID: userID,
		Email:  authmw.Email(c),
		Admin:  authmw.Role(c) == tokens.RoleAdmin,
	}, nil
}

// statusOf maps service errors to an HTTP status and a client-facing reason.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, service.ErrVerification):
		return http.StatusBadRequest, "payment verification failed"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "invalid status transition"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrGateway):
		return http.StatusBadGateway, "payment gateway error"
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// fail logs the error under event and converts it to an echo error. Client
// errors carry the service message, server errors only the reason.
func fail(l *slog.Logger, event string, err error) error {
	status, reason := statusOf(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusServiceUnavailable {
		l.Error(event, "status", status, "reason", reason, "error", err)
		return echo.NewHTTPError(status, reason)
	}
	l.Warn(event, "status", status, "reason", reason, "error", err)
	return echo.NewHTTPError(status, err.Error())
}

func pageParams(c echo.Context) (from, size int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ = strconv.Atoi(c.QueryParam("size"))
	return util.Calculate(page, size)
}
