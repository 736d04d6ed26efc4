package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recommendation values accepted from the model.
const (
	RecommendationAIAgent      = "AI Agent"
	RecommendationSimpleScript = "Simple Script"
)

// AnalysisResult is the structured verdict returned by the LLM.
type AnalysisResult struct {
	Recommendation  string `json:"recommendation"`
	ConfidenceScore int    `json:"confidenceScore"`
	Reasoning       string `json:"reasoning"`
	CostEstimate    string `json:"costEstimate"`
	TimeEstimate    string `json:"timeEstimate"`
	StarterTemplate string `json:"starterTemplate"`
}

// Analysis is one persisted LLM result. Immutable once created.
type Analysis struct {
	ID          uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID                          `gorm:"type:uuid;not null;index" json:"user_id"`
	PaymentID   uuid.UUID                          `gorm:"type:uuid;not null;index" json:"payment_id"`
	Description string                             `gorm:"type:text;not null" json:"description"`
	Result      datatypes.JSONType[AnalysisResult] `json:"result"`
	Model       string                             `gorm:"size:100" json:"model"`
	CreatedAt   time.Time                          `json:"created_at"`
}

func (Analysis) TableName() string {
	return "analyses"
}

func (a *Analysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
