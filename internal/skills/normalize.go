// Package skills implements skill-list normalization and the local
// skill-matching heuristic used to score applicants against job postings.
package skills

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseSkills converts a heterogeneous skills payload into an ordered list of
// canonical lowercase tokens. Accepted inputs are a slice of strings, a slice
// of arbitrary JSON-decoded values, a string (JSON-array-shaped or
// comma-separated), or nil. Anything else yields an empty list.
//
// The output never contains empty strings, preserves first-occurrence order,
// and is not deduplicated. ParseSkills never fails: malformed input degrades
// to the empty list rather than an error.
func ParseSkills(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if tok := NormalizeToken(s); tok != "" {
				out = append(out, tok)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if tok := normalizeElement(e); tok != "" {
				out = append(out, tok)
			}
		}
		return out
	case string:
		return ParseSkillList(v)
	default:
		return nil
	}
}

// ParseSkillList parses a skills string. A JSON-array-shaped string is parsed
// as JSON first; on failure it falls back silently to comma splitting.
func ParseSkillList(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		var parsed []any
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			out := make([]string, 0, len(parsed))
			for _, e := range parsed {
				if tok := normalizeElement(e); tok != "" {
					out = append(out, tok)
				}
			}
			return out
		}
		// Malformed JSON: fall through to comma splitting.
	}

	parts := strings.Split(trimmed, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if tok := NormalizeToken(p); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// NormalizeToken lowercases a skill token, trims it, and collapses internal
// whitespace runs to single spaces. An all-whitespace token becomes "".
func NormalizeToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// normalizeElement converts one JSON-decoded array element into a token.
// Strings normalize directly, numbers stringify, and objects use their "name"
// field with a JSON fallback.
func normalizeElement(e any) string {
	switch v := e.(type) {
	case string:
		return NormalizeToken(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case map[string]any:
		if name, ok := v["name"].(string); ok && strings.TrimSpace(name) != "" {
			return NormalizeToken(name)
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return NormalizeToken(string(encoded))
	default:
		return ""
	}
}
