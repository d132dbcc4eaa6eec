package types

import (
	"time"

	"github.com/google/uuid"
)

// Application status values. Status is mutated only by admin action; any
// value may transition to any other (membership is the only constraint).
const (
	StatusPending      = "pending"
	StatusReviewed     = "reviewed"
	StatusShortlisted  = "shortlisted"
	StatusInterviewing = "interviewing"
	StatusAccepted     = "accepted"
	StatusRejected     = "rejected"
)

// ApplicationStatuses lists all valid status values in display order.
var ApplicationStatuses = []string{
	StatusPending,
	StatusReviewed,
	StatusShortlisted,
	StatusInterviewing,
	StatusAccepted,
	StatusRejected,
}

// ValidStatus reports whether s is one of the six known status values.
func ValidStatus(s string) bool {
	for _, known := range ApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Application represents a candidate's submission for a job.
//
// Skills holds the raw payload as submitted: it may be a JSON-encoded array,
// a comma-separated string, or empty. Use skills.ParseSkillList before any
// comparison; the raw form is preserved so re-normalization stays possible.
type Application struct {
	ID                uuid.UUID   `json:"id"`
	JobID             uuid.UUID   `json:"job_id"`
	FirstName         string      `json:"first_name"`
	LastName          string      `json:"last_name"`
	Email             string      `json:"email"`
	Phone             string      `json:"phone,omitempty"`
	CurrentCompany    string      `json:"current_company,omitempty"`
	CurrentPosition   string      `json:"current_position,omitempty"`
	YearsOfExperience string      `json:"years_of_experience,omitempty"`
	LinkedInURL       string      `json:"linkedin_url,omitempty"`
	PortfolioURL      string      `json:"portfolio_url,omitempty"`
	CoverLetter       string      `json:"cover_letter,omitempty"`
	Skills            string      `json:"skills"`
	CVPath            string      `json:"cv_path,omitempty"`
	CVFilename        string      `json:"cv_filename,omitempty"`
	Status            string      `json:"status"`
	AIAnalysis        *AIAnalysis `json:"aiAnalysis,omitempty"`
	AppliedAt         time.Time   `json:"applied_at"`
}

// CreateApplicationRequest carries the multipart form fields of a submission.
// The CV file itself is handled separately by the upload code.
type CreateApplicationRequest struct {
	JobID             string `json:"job_id" validate:"required,uuid"`
	FirstName         string `json:"first_name" validate:"required,min=1"`
	LastName          string `json:"last_name"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone"`
	CurrentCompany    string `json:"current_company"`
	CurrentPosition   string `json:"current_position"`
	YearsOfExperience string `json:"years_of_experience" validate:"omitempty,oneof=0-2 2-5 5-10 10+"`
	LinkedInURL       string `json:"linkedin_url" validate:"omitempty,url"`
	PortfolioURL      string `json:"portfolio_url" validate:"omitempty,url"`
	CoverLetter       string `json:"cover_letter" validate:"max=1000"`
	Skills            string `json:"skills"`
}

// UpdateApplicationRequest represents an admin status change.
type UpdateApplicationRequest struct {
	Status string `json:"status" validate:"required"`
}
