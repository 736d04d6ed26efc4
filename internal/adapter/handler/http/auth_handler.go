package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/dto"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/middleware/auth"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/usecase"
)

// AuthHandler handles account HTTP requests
type AuthHandler struct {
	logger *zap.Logger
	users  *usecase.UserService
}

// NewAuthHandler creates a new auth handler instance
func NewAuthHandler(logger *zap.Logger, users *usecase.UserService) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		users:  users,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.users.Register(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.users.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Me handles GET /api/v1/users/me
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return err
	}

	resp, err := h.users.Profile(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
