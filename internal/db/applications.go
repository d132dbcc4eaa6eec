package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mgarcia/jobboard/internal/types"
)

const applicationColumns = `id, job_id, first_name, last_name, email, phone,
	current_company, current_position, years_of_experience, linkedin_url,
	portfolio_url, cover_letter, skills, cv_path, cv_filename, status,
	ai_analysis, applied_at`

// ApplicationCreateInput carries a validated submission plus the stored CV
// location.
type ApplicationCreateInput struct {
	JobID             uuid.UUID
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	CurrentCompany    string
	CurrentPosition   string
	YearsOfExperience string
	LinkedInURL       string
	PortfolioURL      string
	CoverLetter       string
	Skills            string
	CVPath            string
	CVFilename        string
}

// CreateApplication inserts a new application with status pending.
func (db *DB) CreateApplication(ctx context.Context, input *ApplicationCreateInput) (*types.Application, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO applications (job_id, first_name, last_name, email, phone,
		                           current_company, current_position, years_of_experience,
		                           linkedin_url, portfolio_url, cover_letter, skills,
		                           cv_path, cv_filename, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 'pending')
		 RETURNING `+applicationColumns,
		input.JobID, input.FirstName, input.LastName, input.Email, input.Phone,
		input.CurrentCompany, input.CurrentPosition, input.YearsOfExperience,
		input.LinkedInURL, input.PortfolioURL, input.CoverLetter, input.Skills,
		input.CVPath, input.CVFilename,
	)

	app, err := scanApplication(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return app, nil
}

// GetApplicationByID retrieves an application by ID. Returns nil when not
// found.
func (db *DB) GetApplicationByID(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)

	app, err := scanApplication(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// FindApplicationByJobAndEmail returns the application a candidate already
// submitted for a job, or nil when they have not applied. Email comparison
// is case-insensitive.
func (db *DB) FindApplicationByJobAndEmail(ctx context.Context, jobID uuid.UUID, email string) (*types.Application, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+`
		 FROM applications WHERE job_id = $1 AND LOWER(email) = LOWER($2)`,
		jobID, email)

	app, err := scanApplication(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return app, nil
}

// ListApplicationsOptions contains filters for listing applications
type ListApplicationsOptions struct {
	JobID  *uuid.UUID // Filter by job
	Status string     // Filter by status
	Limit  int        // Pagination limit
	Offset int        // Pagination offset
}

// ListApplications lists applications with optional filters and pagination,
// newest first. It returns the page plus the total count matching the
// filters.
func (db *DB) ListApplications(ctx context.Context, opts ListApplicationsOptions) ([]types.Application, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if opts.JobID != nil {
		conditions = append(conditions, fmt.Sprintf("job_id = $%d", argIndex))
		args = append(args, *opts.JobID)
		argIndex++
	}
	if opts.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, opts.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM applications %s", whereClause)
	var total int
	if err := db.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM applications %s ORDER BY applied_at DESC LIMIT $%d OFFSET $%d`,
		applicationColumns, whereClause, argIndex, argIndex+1,
	)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []types.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	return apps, total, nil
}

// UpdateApplicationStatus sets the status of an application and returns the
// updated record. Returns nil when the application does not exist. Status
// membership is validated by the caller; any known status may transition to
// any other.
func (db *DB) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status string) (*types.Application, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE applications SET status = $1 WHERE id = $2
		 RETURNING `+applicationColumns,
		status, id)

	app, err := scanApplication(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	return app, nil
}

// SaveApplicationAnalysis stores an AI analysis payload on an application.
func (db *DB) SaveApplicationAnalysis(ctx context.Context, id uuid.UUID, analysis *types.AIAnalysis) error {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE applications SET ai_analysis = $1 WHERE id = $2`,
		analysisJSON, id)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("application not found: %s", id)
	}
	return nil
}

// scanApplication reads one application row, decoding the JSONB analysis
// column when present.
func scanApplication(row pgx.Row) (*types.Application, error) {
	var app types.Application
	var analysisJSON []byte

	err := row.Scan(&app.ID, &app.JobID, &app.FirstName, &app.LastName, &app.Email,
		&app.Phone, &app.CurrentCompany, &app.CurrentPosition, &app.YearsOfExperience,
		&app.LinkedInURL, &app.PortfolioURL, &app.CoverLetter, &app.Skills,
		&app.CVPath, &app.CVFilename, &app.Status, &analysisJSON, &app.AppliedAt)
	if err != nil {
		return nil, err
	}

	if analysisJSON != nil {
		parsed := &types.AIAnalysis{}
		if err := json.Unmarshal(analysisJSON, parsed); err != nil {
			// A corrupt stored analysis must not surface as a zero-valued one.
			log.Printf("[error] failed to decode stored analysis for application %s: %v", app.ID, err)
		} else {
			app.AIAnalysis = parsed
		}
	}
	return &app, nil
}
