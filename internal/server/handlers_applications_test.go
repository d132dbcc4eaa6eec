package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgarcia/jobboard/internal/analysis"
	"github.com/mgarcia/jobboard/internal/skills"
	"github.com/mgarcia/jobboard/internal/types"
)

// multipartApplication builds a submission form. A cv entry with non-empty
// content attaches a file.
func multipartApplication(t *testing.T, fields map[string]string, cvName string, cvContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	if cvName != "" {
		fw, err := mw.CreateFormFile("cv", cvName)
		require.NoError(t, err)
		_, err = fw.Write(cvContent)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func baseFields(jobID uuid.UUID) map[string]string {
	return map[string]string{
		"job_id":     jobID.String(),
		"first_name": "Dana",
		"last_name":  "Reyes",
		"email":      "dana@example.com",
		"skills":     "React, Node, SQL",
	}
}

func TestCreateApplication(t *testing.T) {
	s, store := newTestServer(t)
	job := seedJob(t, store, []string{"react", "node.js", "sql", "aws"})

	body, contentType := multipartApplication(t, baseFields(job.ID), "resume.pdf", []byte("%PDF-1.4 fake"))
	r := httptest.NewRequest("POST", "/applications", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	success, data, _ := decodeEnvelope(t, w.Body)
	assert.True(t, success)

	var app types.Application
	require.NoError(t, json.Unmarshal(data, &app))
	assert.Equal(t, job.ID, app.JobID)
	assert.Equal(t, types.StatusPending, app.Status)
	assert.Equal(t, "resume.pdf", app.CVFilename)
	assert.Equal(t, "React, Node, SQL", app.Skills)

	// The CV landed in the upload directory under a generated name.
	stored, err := store.GetApplicationByID(t.Context(), app.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.CVPath)
	contents, err := os.ReadFile(stored.CVPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), contents)
}

func TestCreateApplicationWithoutCV(t *testing.T) {
	s, store := newTestServer(t)
	job := seedJob(t, store, []string{"go"})

	body, contentType := multipartApplication(t, baseFields(job.ID), "", nil)
	r := httptest.NewRequest("POST", "/applications", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateApplicationRejectsBadInput(t *testing.T) {
	s, store := newTestServer(t)
	job := seedJob(t, store, []string{"go"})

	tests := []struct {
		name   string
		mutate func(map[string]string)
		cvName string
	}{
		{"missing first name", func(f map[string]string) { delete(f, "first_name") }, ""},
		{"bad email", func(f map[string]string) { f["email"] = "not-an-email" }, ""},
		{"bad experience bucket", func(f map[string]string) { f["years_of_experience"] = "30" }, ""},
		{"bad linkedin url", func(f map[string]string) { f["linkedin_url"] = "::" }, ""},
		{"bad job id", func(f map[string]string) { f["job_id"] = "nope" }, ""},
		{"unsupported cv type", func(f map[string]string) {}, "malware.exe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := baseFields(job.ID)
			fields["email"] = tt.name + "@example.com"
			tt.mutate(fields)

			body, contentType := multipartApplication(t, fields, tt.cvName, []byte("data"))
			r := httptest.NewRequest("POST", "/applications", body)
			r.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			s.routes().ServeHTTP(w, r)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateApplicationDuplicate(t *testing.T) {
	s, store := newTestServer(t)
	job := seedJob(t, store, []string{"go"})

	submit := func() *httptest.ResponseRecorder {
		body, contentType := multipartApplication(t, baseFields(job.ID), "", nil)
		r := httptest.NewRequest("POST", "/applications", body)
		r.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		s.routes().ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusCreated, submit().Code)
	assert.Equal(t, http.StatusConflict, submit().Code)
}

func TestCreateApplicationInactiveJob(t *testing.T) {
	s, store := newTestServer(t)
	job := seedJob(t, store, []string{"go"})
	off := false
	_, err := store.UpdateJob(t.Context(), job.ID, &types.UpdateJobRequest{IsActive: &off})
	require.NoError(t, err)

	body, contentType := multipartApplication(t, baseFields(job.ID), "", nil)
	r := httptest.NewRequest("POST", "/applications", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplicationStatusLookup(t *testing.T) {
	s, store := newTestServer(t)
	job := seedJob(t, store, []string{"go"})

	body, contentType := multipartApplication(t, baseFields(job.ID), "", nil)
	r := httptest.NewRequest("POST", "/applications", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, r)
	require.Equal(t, http.StatusCreated, w.Code)

	// Lookup is case-insensitive on email.
	w = httptest.NewRecorder()
	s.routes().ServeHTTP(w, httptest.NewRequest("GET",
		"/jobs/"+job.ID.String()+"/application-status?email=DANA%40example.com", nil))
	require.Equal(t, http.StatusOK, w.Code)

	_, data, _ := decodeEnvelope(t, w.Body)
	var status struct {
		Applied bool   `json:"applied"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(data, &status))
	assert.True(t, status.Applied)
	assert.Equal(t, types.StatusPending, status.Status)

	// Unknown email has not applied.
	w = httptest.NewRecorder()
	s.routes().ServeHTTP(w, httptest.NewRequest("GET",
		"/jobs/"+job.ID.String()+"/application-status?email=other@example.com", nil))
	require.Equal(t, http.StatusOK, w.Code)
	_, data, _ = decodeEnvelope(t, w.Body)
	require.NoError(t, json.Unmarshal(data, &status))
	assert.False(t, status.Applied)

	// Email is required.
	w = httptest.NewRecorder()
	s.routes().ServeHTTP(w, httptest.NewRequest("GET",
		"/jobs/"+job.ID.String()+"/application-status", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListApplicationsRequiresAdmin(t *testing.T) {
	s, store := newTestServer(t)

	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, httptest.NewRequest("GET", "/api/applications", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r := httptest.NewRequest("GET", "/api/applications?status=bogus", nil)
	r.Header.Set("Authorization", "Bearer "+adminToken(t, s, store))
	w = httptest.NewRecorder()
	s.routes().ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetApplicationEnrichment(t *testing.T) {
	s, store := newTestServer(t)
	token := adminToken(t, s, store)
	job := seedJob(t, store, []string{"react", "node.js", "sql", "aws"})

	app, err := store.CreateApplication(t.Context(), applicationInput(job.ID, "dana@example.com", "React, Node, SQL"))
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/applications/"+app.ID.String(), nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	_, data, _ := decodeEnvelope(t, w.Body)
	var detail struct {
		SkillMatch      skills.Result        `json:"skillMatch"`
		SkillDetails    []analysis.SkillInfo `json:"skillDetails"`
		ChartData       []skills.ChartRow    `json:"chartData"`
		MatchPercentage int                  `json:"matchPercentage"`
	}
	require.NoError(t, json.Unmarshal(data, &detail))
	assert.Equal(t, 75, detail.MatchPercentage)
	assert.Len(t, detail.SkillMatch.Matches, 4)
	assert.Len(t, detail.ChartData, 2) // matched and missing; no extras
	require.Len(t, detail.SkillDetails, 4)
	assert.False(t, detail.SkillDetails[3].HasMatch) // aws
	assert.False(t, detail.SkillDetails[0].FromAI)

	// A stored AI analysis supersedes the local verdicts for display.
	ninety := 90
	require.NoError(t, store.SaveApplicationAnalysis(t.Context(), app.ID, &types.AIAnalysis{
		SkillMatch: types.AISkillMatch{
			MatchPercentage: &ninety,
			Matches: []types.AIMatch{
				{JobSkill: "aws", ApplicantSkill: "cloud ops", MatchType: "semantic", Confidence: 0.7},
			},
		},
		Source: "ai",
	}))

	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/applications/"+app.ID.String(), nil)
	r.Header.Set("Authorization", "Bearer "+token)
	s.routes().ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	_, data, _ = decodeEnvelope(t, w.Body)
	require.NoError(t, json.Unmarshal(data, &detail))
	assert.Equal(t, 90, detail.MatchPercentage)
	require.Len(t, detail.SkillDetails, 4)
	assert.True(t, detail.SkillDetails[3].HasMatch) // aws, now covered by the AI entry
	assert.True(t, detail.SkillDetails[3].FromAI)
}

func TestUpdateApplicationStatus(t *testing.T) {
	s, store := newTestServer(t)
	token := adminToken(t, s, store)
	job := seedJob(t, store, []string{"go"})
	app, err := store.CreateApplication(t.Context(), applicationInput(job.ID, "dana@example.com", "go"))
	require.NoError(t, err)

	update := func(body string) *httptest.ResponseRecorder {
		r := httptest.NewRequest("PUT", "/api/applications/"+app.ID.String(), bytes.NewReader([]byte(body)))
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		s.routes().ServeHTTP(w, r)
		return w
	}

	w := update(`{"status":"shortlisted"}`)
	require.Equal(t, http.StatusOK, w.Code)
	_, data, _ := decodeEnvelope(t, w.Body)
	var got types.Application
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, types.StatusShortlisted, got.Status)

	// Any known status may transition to any other, including backwards.
	assert.Equal(t, http.StatusOK, update(`{"status":"pending"}`).Code)

	assert.Equal(t, http.StatusBadRequest, update(`{"status":"archived"}`).Code)
	assert.Equal(t, http.StatusBadRequest, update(`{"status":""}`).Code)

	r := httptest.NewRequest("PUT", "/api/applications/"+uuid.NewString(), bytes.NewReader([]byte(`{"status":"reviewed"}`)))
	r.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	s.routes().ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
