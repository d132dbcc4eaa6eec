package analysis

import (
	"strings"

	"github.com/mgarcia/jobboard/internal/skills"
	"github.com/mgarcia/jobboard/internal/types"
)

// aiConfidenceFloor is the minimum confidence an AI per-skill match needs
// before it overrides the local verdict for that skill.
const aiConfidenceFloor = 0.3

// EffectivePercentage returns the percentage to display for an application:
// the AI's number when an analysis with a defined percentage exists,
// otherwise the locally computed one. The two are never averaged.
func EffectivePercentage(local int, ai *types.AIAnalysis) int {
	if ai != nil && ai.SkillMatch.MatchPercentage != nil {
		return *ai.SkillMatch.MatchPercentage
	}
	return local
}

// FindAIMatch returns the AI per-skill entry for the given job skill, or nil
// when no entry exists or the entry's confidence is at or below the floor.
// Lookup is case-insensitive.
func FindAIMatch(ai *types.AIAnalysis, jobSkill string) *types.AIMatch {
	if ai == nil {
		return nil
	}
	want := strings.ToLower(strings.TrimSpace(jobSkill))
	for i := range ai.SkillMatch.Matches {
		m := &ai.SkillMatch.Matches[i]
		if strings.ToLower(strings.TrimSpace(m.JobSkill)) != want {
			continue
		}
		if m.MatchType == skills.MatchNone || m.Confidence <= aiConfidenceFloor {
			return nil
		}
		return m
	}
	return nil
}

// SkillInfo is the merged per-skill verdict used to render a skill chip.
type SkillInfo struct {
	Skill       string  `json:"skill"`
	HasMatch    bool    `json:"hasMatch"`
	MatchType   string  `json:"matchType"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation,omitempty"`
	FromAI      bool    `json:"fromAI"`
}

// SkillInfoFor resolves the verdict for one job skill: a confident AI entry
// wins, otherwise the local match result is used as-is.
func SkillInfoFor(local skills.Result, ai *types.AIAnalysis, jobSkill string) SkillInfo {
	if m := FindAIMatch(ai, jobSkill); m != nil {
		return SkillInfo{
			Skill:       jobSkill,
			HasMatch:    true,
			MatchType:   m.MatchType,
			Confidence:  m.Confidence,
			Explanation: m.Explanation,
			FromAI:      true,
		}
	}
	for _, m := range local.Matches {
		if strings.EqualFold(m.Skill, jobSkill) {
			return SkillInfo{
				Skill:       jobSkill,
				HasMatch:    m.ApplicantHas,
				MatchType:   m.MatchType,
				Confidence:  m.Confidence,
				Explanation: m.Explanation,
			}
		}
	}
	return SkillInfo{Skill: jobSkill, MatchType: skills.MatchNone}
}
