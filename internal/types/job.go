// Package types provides type definitions for the transfer records shared
// between the HTTP layer and the database layer of the job board.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Job represents a job posting managed by admins and browsed by candidates.
type Job struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Salary          string    `json:"salary"`
	Type            string    `json:"type"`
	ExperienceLevel string    `json:"experience_level"`
	Description     string    `json:"description"`
	Requirements    []string  `json:"requirements"`
	Skills          []string  `json:"skills"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateJobRequest represents the admin request to create a job posting.
type CreateJobRequest struct {
	Title           string   `json:"title" validate:"required,min=1"`
	Company         string   `json:"company" validate:"required,min=1"`
	Location        string   `json:"location"`
	Salary          string   `json:"salary"`
	Type            string   `json:"type" validate:"omitempty,oneof=full-time part-time contract internship"`
	ExperienceLevel string   `json:"experience_level"`
	Description     string   `json:"description"`
	Requirements    []string `json:"requirements"`
	Skills          []string `json:"skills"`
	IsActive        *bool    `json:"is_active"`
}

// UpdateJobRequest represents the admin request to update a job posting.
// Nil pointers leave the stored value unchanged.
type UpdateJobRequest struct {
	Title           *string   `json:"title" validate:"omitempty,min=1"`
	Company         *string   `json:"company" validate:"omitempty,min=1"`
	Location        *string   `json:"location"`
	Salary          *string   `json:"salary"`
	Type            *string   `json:"type" validate:"omitempty,oneof=full-time part-time contract internship"`
	ExperienceLevel *string   `json:"experience_level"`
	Description     *string   `json:"description"`
	Requirements    *[]string `json:"requirements"`
	Skills          *[]string `json:"skills"`
	IsActive        *bool     `json:"is_active"`
}
