package analysis

import (
	"fmt"
	"strings"

	"github.com/mgarcia/jobboard/internal/skills"
	"github.com/mgarcia/jobboard/internal/types"
)

// FromLocal packages a heuristic match result in the AI analysis shape so
// callers get a uniform payload whether or not the model was reachable.
// Source is set to "local" so clients can label the provenance.
func FromLocal(res skills.Result) *types.AIAnalysis {
	pct := res.Percentage
	matches := make([]types.AIMatch, 0, len(res.Matches))
	for _, m := range res.Matches {
		entry := types.AIMatch{
			JobSkill:    m.Skill,
			MatchType:   m.MatchType,
			Confidence:  m.Confidence,
			Explanation: m.Explanation,
		}
		if !m.ApplicantHas {
			entry.MatchType = skills.MatchNone
			entry.Confidence = 0
		}
		matches = append(matches, entry)
	}

	return &types.AIAnalysis{
		SkillMatch: types.AISkillMatch{
			MatchPercentage: &pct,
			Matches:         matches,
		},
		Recommendations: Recommend(res),
		Summary:         summarize(res),
		Source:          "local",
	}
}

// Recommend produces short triage hints from the match distribution.
func Recommend(res skills.Result) []string {
	var recs []string
	switch {
	case res.Percentage >= 75:
		recs = append(recs, "Strong skill alignment; consider shortlisting for interview.")
	case res.Percentage >= 40:
		recs = append(recs, "Partial skill match; review CV and experience before deciding.")
	default:
		recs = append(recs, "Low skill overlap with the posting; likely not a fit on skills alone.")
	}

	if missing := missingSkills(res); len(missing) > 0 {
		recs = append(recs, fmt.Sprintf("Missing required skills: %s.", strings.Join(missing, ", ")))
	}
	if res.Extra > 0 {
		recs = append(recs, fmt.Sprintf("Brings %d additional skills beyond the posting.", res.Extra))
	}
	return recs
}

func summarize(res skills.Result) string {
	total := len(res.Matches)
	if total == 0 {
		return "The posting lists no required skills, so no comparison was made."
	}
	return fmt.Sprintf("The applicant matches %d of %d required skills (%d%%).",
		res.Matched, total, res.Percentage)
}

func missingSkills(res skills.Result) []string {
	var missing []string
	for _, m := range res.Matches {
		if !m.ApplicantHas {
			missing = append(missing, m.Skill)
		}
	}
	return missing
}
