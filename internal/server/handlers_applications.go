package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mgarcia/jobboard/internal/analysis"
	"github.com/mgarcia/jobboard/internal/db"
	"github.com/mgarcia/jobboard/internal/skills"
	"github.com/mgarcia/jobboard/internal/types"
)

// cvExtensions are the CV file types accepted on submission.
var cvExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// handleCreateApplication accepts a multipart submission: the candidate's
// form fields plus an optional CV file under the "cv" field. One application
// per job per email address.
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.maxCVBytes + 1<<20 // CV plus form field overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	req := types.CreateApplicationRequest{
		JobID:             r.FormValue("job_id"),
		FirstName:         strings.TrimSpace(r.FormValue("first_name")),
		LastName:          strings.TrimSpace(r.FormValue("last_name")),
		Email:             strings.TrimSpace(r.FormValue("email")),
		Phone:             strings.TrimSpace(r.FormValue("phone")),
		CurrentCompany:    strings.TrimSpace(r.FormValue("current_company")),
		CurrentPosition:   strings.TrimSpace(r.FormValue("current_position")),
		YearsOfExperience: r.FormValue("years_of_experience"),
		LinkedInURL:       strings.TrimSpace(r.FormValue("linkedin_url")),
		PortfolioURL:      strings.TrimSpace(r.FormValue("portfolio_url")),
		CoverLetter:       r.FormValue("cover_letter"),
		Skills:            r.FormValue("skills"),
	}

	if err := s.validator.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid job_id")
		return
	}

	job, err := s.store.GetJobByID(r.Context(), jobID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if job == nil || !job.IsActive {
		s.respondServiceError(w, &ErrNotFound{Resource: "job", ID: jobID.String()})
		return
	}

	existing, err := s.store.FindApplicationByJobAndEmail(r.Context(), jobID, req.Email)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if existing != nil {
		s.respondServiceError(w, &ErrDuplicateApplication{JobID: jobID, Email: req.Email})
		return
	}

	cvPath, cvFilename, err := s.saveCV(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	app, err := s.store.CreateApplication(r.Context(), &db.ApplicationCreateInput{
		JobID:             jobID,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
		CurrentCompany:    req.CurrentCompany,
		CurrentPosition:   req.CurrentPosition,
		YearsOfExperience: req.YearsOfExperience,
		LinkedInURL:       req.LinkedInURL,
		PortfolioURL:      req.PortfolioURL,
		CoverLetter:       req.CoverLetter,
		Skills:            req.Skills,
		CVPath:            cvPath,
		CVFilename:        cvFilename,
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	// Warm the AI analysis so it is usually ready by the time an admin
	// opens the application.
	s.scheduler.Schedule(app.ID)

	s.respond(w, http.StatusCreated, app)
}

// saveCV stores the uploaded CV under the upload directory and returns its
// path and original filename. No file is not an error; applications without
// a CV are accepted.
func (s *Server) saveCV(r *http.Request) (path, filename string, err error) {
	file, header, err := r.FormFile("cv")
	if err == http.ErrMissingFile {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("invalid cv upload")
	}
	defer file.Close()

	if header.Size > s.maxCVBytes {
		return "", "", fmt.Errorf("cv exceeds the %d MB limit", s.maxCVBytes>>20)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !cvExtensions[ext] {
		return "", "", fmt.Errorf("unsupported cv file type: %s", ext)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	// Stored name is random; the original name is kept as metadata only.
	stored := filepath.Join(s.uploadDir, uuid.NewString()+ext)
	dst, err := os.Create(stored)
	if err != nil {
		return "", "", fmt.Errorf("failed to store cv: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(stored)
		return "", "", fmt.Errorf("failed to store cv: %w", err)
	}
	return stored, filepath.Base(header.Filename), nil
}

// handleApplicationStatus lets a candidate check whether they already
// applied to a job, by email.
func (s *Server) handleApplicationStatus(w http.ResponseWriter, r *http.Request) {
	jobID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		s.respondError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	app, err := s.store.FindApplicationByJobAndEmail(r.Context(), jobID, email)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if app == nil {
		s.respond(w, http.StatusOK, map[string]any{"applied": false})
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"applied":        true,
		"status":         app.Status,
		"application_id": app.ID,
	})
}

// handleListApplications returns applications for admin triage, filterable
// by job and status.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := db.ListApplicationsOptions{Status: q.Get("status")}
	if opts.Status != "" && !types.ValidStatus(opts.Status) {
		s.respondError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	if raw := q.Get("job_id"); raw != "" {
		jobID, err := uuid.Parse(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid job_id filter")
			return
		}
		opts.JobID = &jobID
	}
	if limit := q.Get("limit"); limit != "" {
		opts.Limit, _ = strconv.Atoi(limit)
	}
	if offset := q.Get("offset"); offset != "" {
		opts.Offset, _ = strconv.Atoi(offset)
	}

	apps, total, err := s.store.ListApplications(r.Context(), opts)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if apps == nil {
		apps = []types.Application{}
	}

	s.respond(w, http.StatusOK, map[string]any{
		"applications": apps,
		"total":        total,
	})
}

// handleGetApplication returns one application enriched with the skill
// match: the local heuristic result, the chart distribution, and the
// percentage to display (the AI's number when an analysis exists).
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	app, err := s.store.GetApplicationByID(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if app == nil {
		s.respondServiceError(w, &ErrNotFound{Resource: "application", ID: id.String()})
		return
	}

	job, err := s.store.GetJobByID(r.Context(), app.JobID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	var jobSkills []string
	if job != nil {
		jobSkills = skills.ParseSkills(job.Skills)
	}
	local := skills.Match(jobSkills, skills.ParseSkillList(app.Skills))

	// Per-skill verdicts: a confident AI entry overrides the local one.
	details := make([]analysis.SkillInfo, 0, len(jobSkills))
	for _, jobSkill := range jobSkills {
		details = append(details, analysis.SkillInfoFor(local, app.AIAnalysis, jobSkill))
	}

	s.respond(w, http.StatusOK, map[string]any{
		"application":     app,
		"job":             job,
		"skillMatch":      local,
		"skillDetails":    details,
		"chartData":       local.ChartRows(),
		"matchPercentage": analysis.EffectivePercentage(local.Percentage, app.AIAnalysis),
	})
}

// handleUpdateApplication changes an application's status. Any known status
// may transition to any other.
func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.UpdateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !types.ValidStatus(req.Status) {
		s.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid status: %q", req.Status))
		return
	}

	app, err := s.store.UpdateApplicationStatus(r.Context(), id, req.Status)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if app == nil {
		s.respondServiceError(w, &ErrNotFound{Resource: "application", ID: id.String()})
		return
	}

	log.Printf("[triage] application %s -> %s", app.ID, app.Status)
	s.respond(w, http.StatusOK, app)
}
