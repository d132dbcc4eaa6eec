package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/mgarcia/jobboard/internal/db"
	"github.com/mgarcia/jobboard/internal/types"
)

// Store is the persistence surface the handlers depend on. *db.DB satisfies
// it in production; tests substitute an in-memory fake.
type Store interface {
	Ping(ctx context.Context) error

	// Jobs
	CreateJob(ctx context.Context, req *types.CreateJobRequest) (*types.Job, error)
	GetJobByID(ctx context.Context, id uuid.UUID) (*types.Job, error)
	ListJobs(ctx context.Context, opts db.ListJobsOptions) ([]types.Job, int, error)
	UpdateJob(ctx context.Context, id uuid.UUID, req *types.UpdateJobRequest) (*types.Job, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error

	// Applications
	CreateApplication(ctx context.Context, input *db.ApplicationCreateInput) (*types.Application, error)
	GetApplicationByID(ctx context.Context, id uuid.UUID) (*types.Application, error)
	FindApplicationByJobAndEmail(ctx context.Context, jobID uuid.UUID, email string) (*types.Application, error)
	ListApplications(ctx context.Context, opts db.ListApplicationsOptions) ([]types.Application, int, error)
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status string) (*types.Application, error)
	SaveApplicationAnalysis(ctx context.Context, id uuid.UUID, analysis *types.AIAnalysis) error

	// Users
	CreateUser(ctx context.Context, input *db.UserCreateInput) (*types.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.UserRecord, error)
	GetUserRecordByID(ctx context.Context, id uuid.UUID) (*db.UserRecord, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateUserProfile(ctx context.Context, id uuid.UUID, req *types.UpdateProfileRequest) (*types.User, error)
}
