package dto

import (
	"time"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
)

// AnalyzeRequest names the paid payment to spend and the project to analyse.
type AnalyzeRequest struct {
	PaymentID   string `json:"paymentId" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
}

type AnalysisDTO struct {
	ID          string               `json:"id"`
	PaymentID   string               `json:"paymentId"`
	Description string               `json:"description"`
	Model       string               `json:"model"`
	Result      model.AnalysisResult `json:"result"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// AnalyzeResponse is the verdict plus what is left to spend.
type AnalyzeResponse struct {
	Analysis         AnalysisDTO `json:"analysis"`
	CreditsRemaining int         `json:"creditsRemaining"`
}

type AnalysisListResponse struct {
	Analyses []AnalysisDTO `json:"analyses"`
}

func NewAnalysisDTO(a *model.Analysis) AnalysisDTO {
	return AnalysisDTO{
		ID:          a.ID.String(),
		PaymentID:   a.PaymentID.String(),
		Description: a.Description,
		Model:       a.Model,
		Result:      a.Result.Data(),
		CreatedAt:   a.CreatedAt,
	}
}
