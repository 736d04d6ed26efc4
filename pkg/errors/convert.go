package errors

import "net/http"

// codeMapping maps application error codes to HTTP status codes.
var codeMapping = map[string]int{
	ErrInternal:            http.StatusInternalServerError,
	ErrNotFound:            http.StatusNotFound,
	ErrInvalidArgument:     http.StatusBadRequest,
	ErrUnauthenticated:     http.StatusUnauthorized,
	ErrUnauthorized:        http.StatusForbidden,
	ErrConflict:            http.StatusConflict,
	ErrRateLimited:         http.StatusTooManyRequests,
	ErrUpstreamUnavailable: http.StatusServiceUnavailable,
	ErrBadGateway:          http.StatusBadGateway,
	ErrMisconfigured:       http.StatusInternalServerError,
	ErrTimeout:             http.StatusGatewayTimeout,
}

// ToHTTPStatus returns the HTTP status for an error code, defaulting to 500.
func ToHTTPStatus(code string) int {
	if status, ok := codeMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// httpStatusToCode maps an HTTP status produced outside the domain (router, middleware) back to a code.
func httpStatusToCode(status int) string {
	switch status {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return ErrInvalidArgument
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusServiceUnavailable:
		return ErrUpstreamUnavailable
	case http.StatusBadGateway:
		return ErrBadGateway
	case http.StatusGatewayTimeout:
		return ErrTimeout
	default:
		return ErrInternal
	}
}
