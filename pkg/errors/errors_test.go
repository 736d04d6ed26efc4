package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrapKeepsCodeAndSentinel(t *testing.T) {
	sentinel := NewAppError(ErrConflict, "no credits remaining", nil)

	wrapped := Wrap(fmt.Errorf("decrement: %w", sentinel), "analyze")

	assert.Equal(t, ErrConflict, CodeOf(wrapped))
	assert.True(t, Is(wrapped, sentinel))
	assert.Nil(t, Wrap(nil, "noop"))
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	err := Wrap(New("connection reset"), "load payment")
	assert.Equal(t, ErrInternal, CodeOf(err))
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   Body
	}{
		{
			name:   "app error with details",
			err:    NewAppError(ErrInvalidArgument, "invalid amount", nil).WithDetails("amount must be positive"),
			status: http.StatusBadRequest,
			body:   Body{Error: "invalid amount", Details: "amount must be positive"},
		},
		{
			name:   "internal message hidden",
			err:    Wrap(New("pq: relation does not exist"), "query failed"),
			status: http.StatusInternalServerError,
			body:   Body{Error: "Internal Server Error"},
		},
		{
			name:   "misconfigured hidden",
			err:    NewAppError(ErrMisconfigured, "jwt secret missing", nil),
			status: http.StatusInternalServerError,
			body:   Body{Error: "Internal Server Error"},
		},
		{
			name:   "echo error",
			err:    echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"),
			status: http.StatusTooManyRequests,
			body:   Body{Error: "rate limit exceeded"},
		},
		{
			name:   "plain error",
			err:    New("boom"),
			status: http.StatusInternalServerError,
			body:   Body{Error: "Internal Server Error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := ToHTTPError(tt.err)
			assert.Equal(t, tt.status, he.Code)
			assert.Equal(t, tt.body, he.Message)
		})
	}
}

func TestFromHTTPError(t *testing.T) {
	err := FromHTTPError(echo.NewHTTPError(http.StatusTooManyRequests, "slow down"))
	assert.Equal(t, ErrRateLimited, CodeOf(err))
	assert.Equal(t, http.StatusServiceUnavailable, ToHTTPStatus(ErrUpstreamUnavailable))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus("UNKNOWN"))
}

func TestLogErrorLevelFollowsCode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	LogError(logger, NewAppError(ErrConflict, "no credits remaining", nil).WithDetails("payment pay_1"), "analyze rejected")
	LogError(logger, New("connection reset"), "ledger write failed", zap.String("payment_id", "pay_1"))
	LogError(logger, nil, "ignored")

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, ErrConflict, entries[0].ContextMap()["error_code"])
		assert.Equal(t, "payment pay_1", entries[0].ContextMap()["error_details"])

		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Equal(t, ErrInternal, entries[1].ContextMap()["error_code"])
		assert.Equal(t, "pay_1", entries[1].ContextMap()["payment_id"])
	}
}
