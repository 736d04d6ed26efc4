package llm

import (
	"fmt"
	"strings"
)

const analysisPromptTemplate = `Analyze this project description and determine if it needs an AI agent or a simple script.

Project description:
%s

Consider:
1. Complexity of decision-making required
2. Need for natural language processing
3. Adaptability requirements
4. Data processing needs

Return only a JSON object with EXACTLY these fields:
{
  "recommendation": "AI Agent" or "Simple Script",
  "confidenceScore": integer between 1 and 100,
  "reasoning": "detailed explanation",
  "costEstimate": "estimated cost range",
  "timeEstimate": "estimated time to implement",
  "starterTemplate": "basic code template"
}`

// BuildAnalysisPrompt renders the single-turn analysis prompt.
func BuildAnalysisPrompt(description string) string {
	return fmt.Sprintf(analysisPromptTemplate, strings.TrimSpace(description))
}
