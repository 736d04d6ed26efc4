package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
)

// (?s) lets the body span lines; the language tag after the opening fence is optional.
var fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

type rawAnalysis struct {
	Recommendation  string      `json:"recommendation"`
	ConfidenceScore json.Number `json:"confidenceScore"`
	Reasoning       string      `json:"reasoning"`
	CostEstimate    string      `json:"costEstimate"`
	TimeEstimate    string      `json:"timeEstimate"`
	StarterTemplate string      `json:"starterTemplate"`
}

// AnalysisParser turns model output into a validated AnalysisResult.
type AnalysisParser struct{}

// NewAnalysisParser creates a new AnalysisParser
func NewAnalysisParser() *AnalysisParser {
	return &AnalysisParser{}
}

// Parse validates the output. Every failure wraps ErrLLMInvalidResponse.
func (p *AnalysisParser) Parse(output string) (*model.AnalysisResult, error) {
	text := strings.TrimSpace(output)
	if m := fencePattern.FindStringSubmatch(text); len(m) == 2 {
		text = m[1]
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrLLMInvalidResponse, err)
	}

	var missing []string
	for _, field := range []struct{ name, value string }{
		{"recommendation", raw.Recommendation},
		{"confidenceScore", raw.ConfidenceScore.String()},
		{"reasoning", raw.Reasoning},
		{"costEstimate", raw.CostEstimate},
		{"timeEstimate", raw.TimeEstimate},
		{"starterTemplate", raw.StarterTemplate},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing fields %v", domainErrors.ErrLLMInvalidResponse, missing)
	}

	if raw.Recommendation != model.RecommendationAIAgent && raw.Recommendation != model.RecommendationSimpleScript {
		return nil, fmt.Errorf("%w: invalid recommendation %q", domainErrors.ErrLLMInvalidResponse, raw.Recommendation)
	}

	score, err := raw.ConfidenceScore.Float64()
	if err != nil || score != math.Trunc(score) || score < 1 || score > 100 {
		return nil, fmt.Errorf("%w: invalid confidence score %q", domainErrors.ErrLLMInvalidResponse, raw.ConfidenceScore.String())
	}

	return &model.AnalysisResult{
		Recommendation:  raw.Recommendation,
		ConfidenceScore: int(score),
		Reasoning:       raw.Reasoning,
		CostEstimate:    raw.CostEstimate,
		TimeEstimate:    raw.TimeEstimate,
		StarterTemplate: raw.StarterTemplate,
	}, nil
}
