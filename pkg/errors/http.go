package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Body is the JSON error envelope returned to clients.
type Body struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ToHTTPError converts err into an echo HTTP error with a client-safe body.
// Internal and misconfiguration errors never expose their message.
func ToHTTPError(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		status := ToHTTPStatus(appErr.Code())
		body := Body{Error: appErr.Message(), Details: appErr.Details()}
		if appErr.Code() == ErrInternal || appErr.Code() == ErrMisconfigured {
			body = Body{Error: http.StatusText(status)}
		}
		return echo.NewHTTPError(status, body)
	}

	var echoErr *echo.HTTPError
	if As(err, &echoErr) {
		switch msg := echoErr.Message.(type) {
		case Body:
			return echoErr
		case string:
			return echo.NewHTTPError(echoErr.Code, Body{Error: msg})
		default:
			return echo.NewHTTPError(echoErr.Code, Body{Error: http.StatusText(echoErr.Code)})
		}
	}

	return echo.NewHTTPError(http.StatusInternalServerError, Body{Error: http.StatusText(http.StatusInternalServerError)})
}

// FromHTTPError converts an echo HTTP error into an AppError.
func FromHTTPError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		return err
	}

	var echoErr *echo.HTTPError
	if As(err, &echoErr) {
		msg, ok := echoErr.Message.(string)
		if !ok {
			msg = http.StatusText(echoErr.Code)
		}
		return NewAppError(httpStatusToCode(echoErr.Code), msg, nil)
	}

	return NewAppError(ErrInternal, err.Error(), err)
}
