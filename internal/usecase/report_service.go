package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	apperrors "github.com/Ponna-create/ai-agent-vs-script-validator/pkg/errors"
)

// Report formats.
const (
	ReportMarkdown = "md"
	ReportPDF      = "pdf"
)

var errUnknownReportFormat = apperrors.NewAppError(apperrors.ErrInvalidArgument, "unsupported report format", nil)

var (
	reportNavy  = [3]int{30, 58, 95}
	reportText  = [3]int{44, 62, 80}
	reportMuted = [3]int{127, 140, 141}
	reportGreen = [3]int{46, 204, 113}
	reportBlue  = [3]int{52, 152, 219}
)

// Report is a rendered analysis ready to be served as a download.
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportService renders stored analyses as markdown or PDF.
type ReportService struct {
	analyses *AnalysisService
	logger   *zap.Logger
}

func NewReportService(analyses *AnalysisService, logger *zap.Logger) *ReportService {
	return &ReportService{analyses: analyses, logger: logger}
}

// Render loads the caller's analysis and renders it in format (md when empty).
func (s *ReportService) Render(ctx context.Context, user *model.User, analysisID, format string) (*Report, error) {
	if format == "" {
		format = ReportMarkdown
	}
	if format != ReportMarkdown && format != ReportPDF {
		return nil, errUnknownReportFormat.WithDetails("format must be md or pdf")
	}

	analysis, err := s.analyses.findOwned(ctx, user, analysisID)
	if err != nil {
		return nil, err
	}

	name := "analysis-" + analysis.ID.String()
	switch format {
	case ReportPDF:
		body, err := renderPDF(analysis)
		if err != nil {
			s.logger.Error("Failed to render PDF report",
				zap.String("analysis_id", analysis.ID.String()),
				zap.Error(err))
			return nil, apperrors.Wrap(err, "failed to render report")
		}
		return &Report{Filename: name + ".pdf", ContentType: "application/pdf", Body: body}, nil
	default:
		return &Report{
			Filename:    name + ".md",
			ContentType: "text/markdown; charset=utf-8",
			Body:        []byte(renderMarkdown(analysis)),
		}, nil
	}
}

func renderMarkdown(a *model.Analysis) string {
	r := a.Result.Data()

	var b strings.Builder
	b.WriteString("# Project Analysis\n\n")
	fmt.Fprintf(&b, "_Generated %s by %s_\n\n", a.CreatedAt.UTC().Format("2006-01-02 15:04 MST"), a.Model)
	fmt.Fprintf(&b, "## Recommendation: %s\n\n", r.Recommendation)
	fmt.Fprintf(&b, "**Confidence:** %d/100\n\n", r.ConfidenceScore)
	b.WriteString("## Reasoning\n\n")
	b.WriteString(r.Reasoning + "\n\n")
	b.WriteString("## Estimates\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Cost | %s |\n", markdownCell(r.CostEstimate))
	fmt.Fprintf(&b, "| Time | %s |\n\n", markdownCell(r.TimeEstimate))
	b.WriteString("## Starter Template\n\n")
	b.WriteString("```\n" + r.StarterTemplate + "\n```\n\n")
	b.WriteString("## Project Description\n\n")
	b.WriteString(a.Description + "\n")
	return b.String()
}

func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func renderPDF(a *model.Analysis) ([]byte, error) {
	r := a.Result.Data()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle("Project Analysis", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()

	pdf.SetFillColor(reportNavy[0], reportNavy[1], reportNavy[2])
	pdf.Rect(0, 0, pageWidth, 8, "F")

	pdf.SetY(20)
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(reportNavy[0], reportNavy[1], reportNavy[2])
	pdf.CellFormat(0, 12, "Project Analysis", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(reportMuted[0], reportMuted[1], reportMuted[2])
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Generated %s by %s",
		a.CreatedAt.UTC().Format("2006-01-02 15:04 MST"), a.Model)), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	badge := reportBlue
	if r.Recommendation == model.RecommendationAIAgent {
		badge = reportGreen
	}
	pdf.SetFillColor(badge[0], badge[1], badge[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  %s  (confidence %d/100)", r.Recommendation, r.ConfidenceScore)),
		"", 1, "L", true, 0, "")
	pdf.Ln(6)

	section := func(title, body string) {
		pdf.SetFont("Arial", "B", 13)
		pdf.SetTextColor(reportNavy[0], reportNavy[1], reportNavy[2])
		pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(reportText[0], reportText[1], reportText[2])
		pdf.MultiCell(0, 5, tr(body), "", "L", false)
		pdf.Ln(4)
	}

	section("Reasoning", r.Reasoning)
	section("Cost Estimate", r.CostEstimate)
	section("Time Estimate", r.TimeEstimate)

	pdf.SetFont("Arial", "B", 13)
	pdf.SetTextColor(reportNavy[0], reportNavy[1], reportNavy[2])
	pdf.CellFormat(0, 8, "Starter Template", "", 1, "L", false, 0, "")
	pdf.SetFont("Courier", "", 9)
	pdf.SetTextColor(reportText[0], reportText[1], reportText[2])
	pdf.MultiCell(0, 4.5, tr(r.StarterTemplate), "", "L", false)
	pdf.Ln(4)

	section("Project Description", a.Description)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output error: %w", err)
	}
	return buf.Bytes(), nil
}
