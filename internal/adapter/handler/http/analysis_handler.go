package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/dto"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/middleware/auth"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/usecase"
)

// AnalysisHandler handles analysis requests and report downloads
type AnalysisHandler struct {
	logger   *zap.Logger
	analyses *usecase.AnalysisService
	reports  *usecase.ReportService
}

// NewAnalysisHandler creates a new analysis handler instance
func NewAnalysisHandler(logger *zap.Logger, analyses *usecase.AnalysisService, reports *usecase.ReportService) *AnalysisHandler {
	return &AnalysisHandler{
		logger:   logger,
		analyses: analyses,
		reports:  reports,
	}
}

// Analyze handles POST /api/v1/analyses
func (h *AnalysisHandler) Analyze(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return err
	}

	var req dto.AnalyzeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.analyses.Analyze(c.Request().Context(), user, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListAnalyses handles GET /api/v1/analyses
func (h *AnalysisHandler) ListAnalyses(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return err
	}

	resp, err := h.analyses.ListAnalyses(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// GetAnalysis handles GET /api/v1/analyses/:id
func (h *AnalysisHandler) GetAnalysis(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return err
	}

	resp, err := h.analyses.GetAnalysis(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// DownloadReport handles GET /api/v1/analyses/:id/report?format=md|pdf
func (h *AnalysisHandler) DownloadReport(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return err
	}

	report, err := h.reports.Render(c.Request().Context(), user, c.Param("id"), c.QueryParam("format"))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.Filename))
	return c.Blob(http.StatusOK, report.ContentType, report.Body)
}
