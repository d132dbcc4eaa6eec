package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/mgarcia/jobboard/internal/db"
	"github.com/mgarcia/jobboard/internal/ingestion"
	"github.com/mgarcia/jobboard/internal/types"
)

// handleListJobs returns active job postings. Admins may pass
// include_inactive=true to see deactivated postings too.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := db.ListJobsOptions{
		Type:   q.Get("type"),
		Search: q.Get("search"),
	}
	if q.Get("include_inactive") == "true" {
		opts.IncludeInactive = true
	}
	if limit := q.Get("limit"); limit != "" {
		opts.Limit, _ = strconv.Atoi(limit)
	}
	if offset := q.Get("offset"); offset != "" {
		opts.Offset, _ = strconv.Atoi(offset)
	}

	jobs, total, err := s.store.ListJobs(r.Context(), opts)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []types.Job{}
	}

	s.respond(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"total": total,
	})
}

// handleGetJob returns a single job posting.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	job, err := s.store.GetJobByID(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if job == nil {
		s.respondServiceError(w, &ErrNotFound{Resource: "job", ID: id.String()})
		return
	}
	s.respond(w, http.StatusOK, job)
}

// handleCreateJob creates a job posting. Descriptions and requirements pasted
// as HTML are reduced to plain text before storage.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req types.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.validator.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	req.Description = ingestion.CleanDescription(req.Description)
	req.Requirements = cleanRequirements(req.Requirements)

	job, err := s.store.CreateJob(r.Context(), &req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, job)
}

// handleUpdateJob applies a partial update to a job posting.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.validator.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	if req.Description != nil {
		cleaned := ingestion.CleanDescription(*req.Description)
		req.Description = &cleaned
	}
	if req.Requirements != nil {
		cleaned := cleanRequirements(*req.Requirements)
		req.Requirements = &cleaned
	}

	job, err := s.store.UpdateJob(r.Context(), id, &req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if job == nil {
		s.respondServiceError(w, &ErrNotFound{Resource: "job", ID: id.String()})
		return
	}
	s.respond(w, http.StatusOK, job)
}

// handleDeleteJob removes a job posting and its applications.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	job, err := s.store.GetJobByID(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if job == nil {
		s.respondServiceError(w, &ErrNotFound{Resource: "job", ID: id.String()})
		return
	}

	if err := s.store.DeleteJob(r.Context(), id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "Job deleted successfully")
}

// cleanRequirements reduces each requirement entry to plain text.
func cleanRequirements(requirements []string) []string {
	for i, entry := range requirements {
		requirements[i] = ingestion.CleanDescription(entry)
	}
	return requirements
}

// pathUUID parses a UUID path parameter, writing a 400 when it is malformed.
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
