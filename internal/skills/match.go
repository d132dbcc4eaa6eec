package skills

import (
	"fmt"
	"math"
	"strings"
)

// Match type classifications for a satisfied (or unsatisfied) job skill.
const (
	MatchExact    = "exact"
	MatchSemantic = "semantic"
	MatchSynonym  = "synonym"
	MatchNone     = "none"
)

// Confidence assigned per match type.
const (
	confidenceExact    = 1.0
	confidenceSemantic = 0.8
)

// SkillMatch records how a single required job skill was (or was not)
// satisfied by the applicant's skill set.
type SkillMatch struct {
	Skill        string  `json:"skill"`
	ApplicantHas bool    `json:"applicantHas"`
	Required     bool    `json:"required"`
	MatchLevel   int     `json:"matchLevel"`
	MatchType    string  `json:"matchType"`
	Confidence   float64 `json:"confidence"`
	Explanation  string  `json:"explanation"`
}

// ChartRow is one slice of the matched/missing/extra distribution. Rows are
// emitted only for counts greater than zero.
type ChartRow struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Result aggregates the per-skill matches for one applicant/job pair.
type Result struct {
	Matches    []SkillMatch `json:"matches"`
	Percentage int          `json:"matchPercentage"`
	Matched    int          `json:"matched"`
	Missing    int          `json:"missing"`
	Extra      int          `json:"extra"`
}

// Match evaluates the applicant's skills against the job's required skills.
// Both lists are expected in normalized token form (see ParseSkills); the
// pair predicate normalizes again so unnormalized input still compares
// case-insensitively.
//
// For each job skill the applicant's skills are scanned in their original
// order and the first satisfying skill wins. Applicant skills beyond the
// job's requirements are only counted, never recorded individually.
func Match(jobSkills, applicantSkills []string) Result {
	// A job with no required skills has nothing to score: percentage 0 and
	// an empty distribution, not a divide-by-zero.
	if len(jobSkills) == 0 {
		return Result{Matches: []SkillMatch{}}
	}

	matches := make([]SkillMatch, 0, len(jobSkills))
	matched := 0

	for _, jobSkill := range jobSkills {
		m := SkillMatch{
			Skill:     jobSkill,
			Required:  true,
			MatchType: MatchNone,
		}

		for _, appSkill := range applicantSkills {
			if !pairMatches(appSkill, jobSkill) {
				continue
			}
			m.ApplicantHas = true
			if strings.EqualFold(appSkill, jobSkill) {
				m.MatchType = MatchExact
				m.Confidence = confidenceExact
			} else {
				m.MatchType = MatchSemantic
				m.Confidence = confidenceSemantic
			}
			m.MatchLevel = int(math.Round(m.Confidence * 100))
			m.Explanation = fmt.Sprintf("Applicant has %q which matches %q", appSkill, jobSkill)
			break
		}

		if !m.ApplicantHas {
			m.Explanation = fmt.Sprintf("Applicant does not have %q", jobSkill)
		} else {
			matched++
		}
		matches = append(matches, m)
	}

	return Result{
		Matches:    matches,
		Percentage: percentage(matched, len(jobSkills)),
		Matched:    matched,
		Missing:    len(jobSkills) - matched,
		Extra:      extraCount(jobSkills, applicantSkills),
	}
}

// ChartRows returns the matched/missing/extra distribution for display,
// omitting zero-valued rows. A zero-skill job yields an empty slice.
func (r Result) ChartRows() []ChartRow {
	rows := make([]ChartRow, 0, 3)
	if r.Matched > 0 {
		rows = append(rows, ChartRow{Name: "Matched", Value: r.Matched, Color: "#10B981"})
	}
	if r.Missing > 0 {
		rows = append(rows, ChartRow{Name: "Missing", Value: r.Missing, Color: "#EF4444"})
	}
	if r.Extra > 0 {
		rows = append(rows, ChartRow{Name: "Extra", Value: r.Extra, Color: "#3B82F6"})
	}
	return rows
}

// pairMatches reports whether an applicant skill satisfies a job skill:
// exact equality, substring containment either direction, or a shared
// whitespace-delimited word.
func pairMatches(applicantSkill, jobSkill string) bool {
	s1 := NormalizeToken(applicantSkill)
	s2 := NormalizeToken(jobSkill)
	if s1 == "" || s2 == "" {
		return false
	}

	if s1 == s2 {
		return true
	}
	if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
		return true
	}

	words2 := strings.Fields(s2)
	for _, w := range strings.Fields(s1) {
		for _, w2 := range words2 {
			if w == w2 {
				return true
			}
		}
	}
	return false
}

// percentage rounds 100*matched/total, guarding the zero-requirements case.
func percentage(matched, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(matched) / float64(total) * 100))
}

// extraCount counts applicant skills that satisfy none of the job's
// requirements.
func extraCount(jobSkills, applicantSkills []string) int {
	extra := 0
	for _, appSkill := range applicantSkills {
		used := false
		for _, jobSkill := range jobSkills {
			if pairMatches(appSkill, jobSkill) {
				used = true
				break
			}
		}
		if !used {
			extra++
		}
	}
	return extra
}
