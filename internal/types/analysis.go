package types

// AIMatch is one per-skill entry in an AI analysis. Field names follow the
// analyze endpoint's wire format, which is camelCase unlike the rest of the
// API.
type AIMatch struct {
	JobSkill       string  `json:"jobSkill"`
	ApplicantSkill string  `json:"applicantSkill,omitempty"`
	MatchType      string  `json:"matchType"`
	Confidence     float64 `json:"confidence"`
	Explanation    string  `json:"explanation,omitempty"`
}

// AISkillMatch is the skill-match section of an AI analysis. MatchPercentage
// is a pointer: the overlay rule is "AI value wins if defined", so absence
// must be distinguishable from zero.
type AISkillMatch struct {
	MatchPercentage *int      `json:"matchPercentage,omitempty"`
	Matches         []AIMatch `json:"matches"`
}

// AIAnalysis is the payload of the analyze endpoint. When present on an
// application it supersedes the locally computed skill match for display; no
// merging or reconciliation is performed.
type AIAnalysis struct {
	SkillMatch      AISkillMatch `json:"skillMatch"`
	Recommendations []string     `json:"recommendations,omitempty"`
	Summary         string       `json:"summary,omitempty"`
	Source          string       `json:"source,omitempty"`
}
