package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/service"
)

// RequestValidator plugs validator/v10 into echo's c.Validate.
type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{v: validator.New()}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return fmt.Errorf("%w: %v", service.ErrValidation, err)
	}
	msgs := make([]string, 0, len(vErrs))
	for _, fe := range vErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" value missing")
		case "max", "min", "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fe.Field()+": "+fe.Tag())
		}
	}
	return fmt.Errorf("%w: %s", service.ErrValidation, strings.Join(msgs, ", "))
}

func bindValid(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid body", service.ErrValidation)
	}
	return c.Validate(req)
}

// classify maps service errors to a status code and a message safe to show.
func classify(err error) (int, string) {
	msg := strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
	switch {
	case errors.Is(err, service.ErrNoSession):
		return http.StatusUnauthorized, "no active session"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, "invalid refresh token"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, msg
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, msg
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, msg
	}
	return http.StatusInternalServerError, "internal error"
}

func fail(l *slog.Logger, op string, err error) error {
	code, reason := classify(err)
	if code >= http.StatusInternalServerError {
		l.Error(op+"_error", "status", code, "reason", reason, "error", err)
	} else {
		l.Warn(op+"_error", "status", code, "reason", reason, "error", err)
	}
	return echo.NewHTTPError(code, reason)
}
