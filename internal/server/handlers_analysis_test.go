package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgarcia/jobboard/internal/analysis"
	"github.com/mgarcia/jobboard/internal/llm"
	"github.com/mgarcia/jobboard/internal/types"
)

// stubLLM returns a canned JSON reply, or an error.
type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return s.reply, s.err
}

func (s *stubLLM) Close() error { return nil }

const analysisReply = `{
  "skillMatch": {
    "matchPercentage": 85,
    "matches": [
      {"jobSkill": "react", "applicantSkill": "React", "matchType": "exact", "confidence": 1, "explanation": "Listed directly."}
    ]
  },
  "recommendations": ["Shortlist for interview."],
  "summary": "Strong frontend background."
}`

func TestAnalyzeApplicationWithModel(t *testing.T) {
	s, store := newTestServer(t)
	s.analyzer = analysis.NewAnalyzer(&stubLLM{reply: analysisReply})
	token := adminToken(t, s, store)

	job := seedJob(t, store, []string{"react"})
	app, err := store.CreateApplication(t.Context(), applicationInput(job.ID, "dana@example.com", "React"))
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/api/applications/"+app.ID.String()+"/analyze", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	_, data, _ := decodeEnvelope(t, w.Body)
	var result types.AIAnalysis
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "ai", result.Source)
	require.NotNil(t, result.SkillMatch.MatchPercentage)
	assert.Equal(t, 85, *result.SkillMatch.MatchPercentage)

	// The analysis was persisted alongside the application.
	stored, err := store.GetApplicationByID(t.Context(), app.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AIAnalysis)
	assert.Equal(t, "ai", stored.AIAnalysis.Source)
}

func TestAnalyzeApplicationFallsBackToLocal(t *testing.T) {
	tests := []struct {
		name string
		wire func(s *Server)
	}{
		{"model not configured", func(s *Server) {}},
		{"model errors", func(s *Server) {
			s.analyzer = analysis.NewAnalyzer(&stubLLM{err: assert.AnError})
		}},
		{"model returns junk", func(s *Server) {
			s.analyzer = analysis.NewAnalyzer(&stubLLM{reply: `{"skillMatch":{}}`})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store := newTestServer(t)
			tt.wire(s)
			token := adminToken(t, s, store)

			job := seedJob(t, store, []string{"react", "sql"})
			app, err := store.CreateApplication(t.Context(), applicationInput(job.ID, "dana@example.com", "React"))
			require.NoError(t, err)

			r := httptest.NewRequest("POST", "/api/applications/"+app.ID.String()+"/analyze", nil)
			r.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			s.routes().ServeHTTP(w, r)
			require.Equal(t, http.StatusOK, w.Code)

			_, data, _ := decodeEnvelope(t, w.Body)
			var result types.AIAnalysis
			require.NoError(t, json.Unmarshal(data, &result))
			assert.Equal(t, "local", result.Source)
			require.NotNil(t, result.SkillMatch.MatchPercentage)
			assert.Equal(t, 50, *result.SkillMatch.MatchPercentage)
		})
	}
}

func TestAnalyzeApplicationNotFound(t *testing.T) {
	s, store := newTestServer(t)
	token := adminToken(t, s, store)

	r := httptest.NewRequest("POST", "/api/applications/"+uuid.NewString()+"/analyze", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
