package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mgarcia/jobboard/internal/types"
)

const jobColumns = `id, title, company, location, salary, type, experience_level,
	description, requirements, skills, is_active, created_at, updated_at`

// CreateJob inserts a new job posting and returns the stored record.
func (db *DB) CreateJob(ctx context.Context, req *types.CreateJobRequest) (*types.Job, error) {
	requirementsJSON, err := json.Marshal(emptyIfNil(req.Requirements))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal requirements: %w", err)
	}
	skillsJSON, err := json.Marshal(emptyIfNil(req.Skills))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal skills: %w", err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (title, company, location, salary, type, experience_level,
		                   description, requirements, skills, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+jobColumns,
		req.Title, req.Company, req.Location, req.Salary, req.Type,
		req.ExperienceLevel, req.Description, requirementsJSON, skillsJSON, isActive,
	)

	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// GetJobByID retrieves a job posting by ID. Returns nil when not found.
func (db *DB) GetJobByID(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)

	job, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobsOptions contains filters for listing jobs
type ListJobsOptions struct {
	IncludeInactive bool   // Admin listings include deactivated postings
	Type            string // Filter by employment type
	Search          string // Case-insensitive match on title or company
	Limit           int    // Pagination limit
	Offset          int    // Pagination offset
}

// ListJobs lists job postings with optional filters and pagination. It
// returns the page of jobs plus the total count matching the filters.
func (db *DB) ListJobs(ctx context.Context, opts ListJobsOptions) ([]types.Job, int, error) {
	// Build WHERE clause dynamically
	var conditions []string
	var args []interface{}
	argIndex := 1

	if !opts.IncludeInactive {
		conditions = append(conditions, "is_active = TRUE")
	}
	if opts.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIndex))
		args = append(args, opts.Type)
		argIndex++
	}
	if opts.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR company ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+opts.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Get total count
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM jobs %s", whereClause)
	var total int
	if err := db.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
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
		`SELECT %s FROM jobs %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		jobColumns, whereClause, argIndex, argIndex+1,
	)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, total, nil
}

// UpdateJob applies the non-nil fields of req to the stored job and returns
// the updated record. Returns nil when the job does not exist.
func (db *DB) UpdateJob(ctx context.Context, id uuid.UUID, req *types.UpdateJobRequest) (*types.Job, error) {
	var sets []string
	var args []interface{}
	argIndex := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if req.Title != nil {
		add("title", *req.Title)
	}
	if req.Company != nil {
		add("company", *req.Company)
	}
	if req.Location != nil {
		add("location", *req.Location)
	}
	if req.Salary != nil {
		add("salary", *req.Salary)
	}
	if req.Type != nil {
		add("type", *req.Type)
	}
	if req.ExperienceLevel != nil {
		add("experience_level", *req.ExperienceLevel)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Requirements != nil {
		requirementsJSON, err := json.Marshal(emptyIfNil(*req.Requirements))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal requirements: %w", err)
		}
		add("requirements", requirementsJSON)
	}
	if req.Skills != nil {
		skillsJSON, err := json.Marshal(emptyIfNil(*req.Skills))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal skills: %w", err)
		}
		add("skills", skillsJSON)
	}
	if req.IsActive != nil {
		add("is_active", *req.IsActive)
	}

	if len(sets) == 0 {
		return db.GetJobByID(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE jobs SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argIndex, jobColumns,
	)

	job, err := scanJob(db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return job, nil
}

// DeleteJob removes a job posting and its applications (via cascade).
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("job not found: %s", id)
	}
	return nil
}

// scanJob reads one job row, decoding the JSONB list columns.
func scanJob(row pgx.Row) (*types.Job, error) {
	var job types.Job
	var requirementsJSON, skillsJSON []byte

	err := row.Scan(&job.ID, &job.Title, &job.Company, &job.Location, &job.Salary,
		&job.Type, &job.ExperienceLevel, &job.Description, &requirementsJSON,
		&skillsJSON, &job.IsActive, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if requirementsJSON != nil {
		_ = json.Unmarshal(requirementsJSON, &job.Requirements)
	}
	if skillsJSON != nil {
		_ = json.Unmarshal(skillsJSON, &job.Skills)
	}
	return &job, nil
}

// emptyIfNil keeps JSONB list columns as [] rather than null.
func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
