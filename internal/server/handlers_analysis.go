package server

import (
	"log"
	"net/http"

	"github.com/mgarcia/jobboard/internal/analysis"
	"github.com/mgarcia/jobboard/internal/skills"
)

// handleAnalyzeApplication runs an AI skill analysis on demand. When the
// model is unreachable or misconfigured the locally computed heuristic is
// returned instead; the endpoint never fails because the AI did.
func (s *Server) handleAnalyzeApplication(w http.ResponseWriter, r *http.Request) {
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
	if job == nil {
		s.respondServiceError(w, &ErrNotFound{Resource: "job", ID: app.JobID.String()})
		return
	}

	if s.analyzer.Available() {
		result, err := s.analyzer.Analyze(r.Context(), app, job)
		if err == nil {
			if err := s.store.SaveApplicationAnalysis(r.Context(), id, result); err != nil {
				log.Printf("[ai] failed to persist analysis for application %s: %v", id, err)
			}
			s.respond(w, http.StatusOK, result)
			return
		}
		log.Printf("[ai] analysis failed for application %s, using local heuristic: %v", id, err)
	}

	local := skills.Match(skills.ParseSkills(job.Skills), skills.ParseSkillList(app.Skills))
	s.respond(w, http.StatusOK, analysis.FromLocal(local))
}
