package errors

// Application-wide error codes.
const (
	ErrInternal            = "INTERNAL"
	ErrNotFound            = "NOT_FOUND"
	ErrInvalidArgument     = "INVALID_ARGUMENT"
	ErrUnauthenticated     = "UNAUTHENTICATED"
	ErrUnauthorized        = "UNAUTHORIZED"
	ErrConflict            = "CONFLICT"
	ErrRateLimited         = "RATE_LIMITED"
	ErrUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrBadGateway          = "BAD_GATEWAY"
	ErrMisconfigured       = "MISCONFIGURED"
	ErrTimeout             = "TIMEOUT"
)
