// Package analysis produces AI skill analyses for applicant/job pairs and
// defines how AI results overlay the locally computed heuristic.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mgarcia/jobboard/internal/llm"
	"github.com/mgarcia/jobboard/internal/skills"
	"github.com/mgarcia/jobboard/internal/types"
)

// analysisSchema validates the model's JSON reply before it is trusted.
const analysisSchema = `{
  "type": "object",
  "required": ["skillMatch"],
  "properties": {
    "skillMatch": {
      "type": "object",
      "required": ["matchPercentage", "matches"],
      "properties": {
        "matchPercentage": {"type": "integer", "minimum": 0, "maximum": 100},
        "matches": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["jobSkill", "matchType", "confidence"],
            "properties": {
              "jobSkill": {"type": "string", "minLength": 1},
              "applicantSkill": {"type": "string"},
              "matchType": {"enum": ["exact", "semantic", "synonym", "none"]},
              "confidence": {"type": "number", "minimum": 0, "maximum": 1},
              "explanation": {"type": "string"}
            }
          }
        }
      }
    },
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "summary": {"type": "string"}
  }
}`

// Analyzer runs LLM-backed skill analyses. A nil Analyzer (or one without a
// client) is valid and reports itself unavailable, which callers treat as
// "use the local heuristic".
type Analyzer struct {
	client llm.Client
}

// NewAnalyzer creates an analyzer backed by the given LLM client. The client
// may be nil, in which case the analyzer is permanently unavailable.
func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{client: client}
}

// Available reports whether AI analysis can be attempted at all.
func (a *Analyzer) Available() bool {
	return a != nil && a.client != nil
}

// Analyze asks the model to score the applicant against the job and returns
// the validated analysis. Any failure (transport, malformed JSON, schema
// violation) is returned as an error; callers fall back to the local
// heuristic and must not surface the failure to end users.
func (a *Analyzer) Analyze(ctx context.Context, app *types.Application, job *types.Job) (*types.AIAnalysis, error) {
	if !a.Available() {
		return nil, fmt.Errorf("ai analysis is not configured")
	}

	prompt := buildPrompt(app, job)
	raw, err := a.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("ai analysis request failed: %w", err)
	}

	if err := validatePayload(raw); err != nil {
		return nil, err
	}

	var result types.AIAnalysis
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis payload: %w", err)
	}

	clamp(&result)
	result.Source = "ai"
	return &result, nil
}

// validatePayload checks the raw JSON against the analysis schema.
func validatePayload(raw string) error {
	schemaLoader := gojsonschema.NewStringLoader(analysisSchema)
	documentLoader := gojsonschema.NewStringLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("analysis payload is not valid JSON: %w", err)
	}
	if !result.Valid() {
		var sb strings.Builder
		sb.WriteString("analysis payload failed schema validation:")
		for _, desc := range result.Errors() {
			sb.WriteString(" " + desc.String() + ";")
		}
		return fmt.Errorf("%s", sb.String())
	}
	return nil
}

// clamp bounds confidences to [0,1] and the percentage to [0,100] in case
// the schema let something marginal through (e.g. via additional properties).
func clamp(result *types.AIAnalysis) {
	if p := result.SkillMatch.MatchPercentage; p != nil {
		if *p < 0 {
			*p = 0
		}
		if *p > 100 {
			*p = 100
		}
	}
	for i := range result.SkillMatch.Matches {
		m := &result.SkillMatch.Matches[i]
		if m.Confidence < 0 {
			m.Confidence = 0
		}
		if m.Confidence > 1 {
			m.Confidence = 1
		}
	}
}

// buildPrompt renders the analysis request. Skills are pre-normalized so the
// model sees the same tokens the local heuristic scores.
func buildPrompt(app *types.Application, job *types.Job) string {
	jobSkills := skills.ParseSkills(job.Skills)
	applicantSkills := skills.ParseSkillList(app.Skills)

	var sb strings.Builder
	sb.WriteString("You are reviewing a job application. Compare the applicant's skills against the job's required skills.\n\n")
	fmt.Fprintf(&sb, "Job title: %s\n", job.Title)
	fmt.Fprintf(&sb, "Required skills: %s\n", strings.Join(jobSkills, ", "))
	fmt.Fprintf(&sb, "Applicant skills: %s\n", strings.Join(applicantSkills, ", "))
	if app.YearsOfExperience != "" {
		fmt.Fprintf(&sb, "Years of experience: %s\n", app.YearsOfExperience)
	}
	if letter := strings.TrimSpace(app.CoverLetter); letter != "" {
		if len(letter) > 1500 {
			letter = letter[:1500]
		}
		fmt.Fprintf(&sb, "Cover letter:\n%s\n", letter)
	}
	sb.WriteString(`
Respond with JSON only, in exactly this shape:
{
  "skillMatch": {
    "matchPercentage": <integer 0-100>,
    "matches": [
      {"jobSkill": "<required skill>", "applicantSkill": "<matching applicant skill or empty>", "matchType": "exact|semantic|synonym|none", "confidence": <number 0-1>, "explanation": "<one sentence>"}
    ]
  },
  "recommendations": ["<short hiring recommendation>"],
  "summary": "<two sentence overview>"
}
Include one matches entry per required skill. Use matchType "none" with confidence 0 when the applicant lacks the skill.`)
	return sb.String()
}
