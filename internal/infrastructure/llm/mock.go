package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
)

// agentSignals are words that push the mock towards an AI Agent verdict.
var agentSignals = []string{"natural language", "chat", "adapt", "learn", "decide", "decision", "conversation", "classify", "understand"}

// MockProvider answers without network access. It is refused in production.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Model() string {
	return "mock"
}

// Complete returns a well-formed verdict derived from keywords in the prompt.
func (m *MockProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lower := strings.ToLower(describedProject(prompt))
	hits := 0
	for _, signal := range agentSignals {
		if strings.Contains(lower, signal) {
			hits++
		}
	}

	result := model.AnalysisResult{
		Recommendation:  model.RecommendationSimpleScript,
		ConfidenceScore: 70,
		Reasoning:       "The described workflow is deterministic and can be expressed as fixed steps.",
		CostEstimate:    "$500 - $2,000",
		TimeEstimate:    "1-2 weeks",
		StarterTemplate: "def main():\n    data = load()\n    write(transform(data))\n",
	}
	if hits >= 2 {
		result.Recommendation = model.RecommendationAIAgent
		result.ConfidenceScore = 60 + 5*min(hits, 8)
		result.Reasoning = "The workflow needs open-ended decisions over unstructured input."
		result.CostEstimate = "$5,000 - $20,000"
		result.TimeEstimate = "4-8 weeks"
		result.StarterTemplate = "agent = Agent(tools=[search, summarize])\nagent.run(task)\n"
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// describedProject cuts the user's description out of an analysis prompt.
func describedProject(prompt string) string {
	const start, end = "Project description:", "Consider:"
	i := strings.Index(prompt, start)
	if i < 0 {
		return prompt
	}
	rest := prompt[i+len(start):]
	if j := strings.Index(rest, end); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
