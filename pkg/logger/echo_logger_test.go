package logger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/Ponna-create/ai-agent-vs-script-validator/pkg/errors"
)

func TestWithEchoLoggerRendersAppErrors(t *testing.T) {
	e := echo.New()
	WithEchoLogger(e, zap.NewNop())

	e.GET("/conflict", func(c echo.Context) error {
		return apperrors.NewAppError(apperrors.ErrConflict, "no credits remaining", nil).WithDetails("buy another analysis")
	})
	e.GET("/boom", func(c echo.Context) error {
		return apperrors.Wrap(apperrors.New("dial tcp: refused"), "load payment")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var body apperrors.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no credits remaining", body.Error)
	assert.Equal(t, "buy another analysis", body.Details)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "[MASKED]", maskToken("short"))
	assert.Equal(t, "Bearer eyJ...abcde", maskToken("Bearer eyJhbGciOiJIUzI1NiJ9.abcde"))
}
