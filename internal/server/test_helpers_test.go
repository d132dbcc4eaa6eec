package server

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mgarcia/jobboard/internal/analysis"
	"github.com/mgarcia/jobboard/internal/config"
	"github.com/mgarcia/jobboard/internal/db"
	"github.com/mgarcia/jobboard/internal/server/ratelimit"
	"github.com/mgarcia/jobboard/internal/types"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	mu           sync.Mutex
	jobs         map[uuid.UUID]*types.Job
	applications map[uuid.UUID]*types.Application
	users        map[uuid.UUID]*db.UserRecord
	pingErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:         make(map[uuid.UUID]*types.Job),
		applications: make(map[uuid.UUID]*types.Application),
		users:        make(map[uuid.UUID]*db.UserRecord),
	}
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) CreateJob(ctx context.Context, req *types.CreateJobRequest) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	now := time.Now()
	job := &types.Job{
		ID:              uuid.New(),
		Title:           req.Title,
		Company:         req.Company,
		Location:        req.Location,
		Salary:          req.Salary,
		Type:            req.Type,
		ExperienceLevel: req.ExperienceLevel,
		Description:     req.Description,
		Requirements:    req.Requirements,
		Skills:          req.Skills,
		IsActive:        isActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeStore) GetJobByID(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id], nil
}

func (f *fakeStore) ListJobs(ctx context.Context, opts db.ListJobsOptions) ([]types.Job, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []types.Job
	for _, job := range f.jobs {
		if !opts.IncludeInactive && !job.IsActive {
			continue
		}
		if opts.Type != "" && job.Type != opts.Type {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(job.Title), strings.ToLower(opts.Search)) {
			continue
		}
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, len(jobs), nil
}

func (f *fakeStore) UpdateJob(ctx context.Context, id uuid.UUID, req *types.UpdateJobRequest) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	if req.Title != nil {
		job.Title = *req.Title
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Skills != nil {
		job.Skills = *req.Skills
	}
	if req.IsActive != nil {
		job.IsActive = *req.IsActive
	}
	job.UpdatedAt = time.Now()
	return job, nil
}

func (f *fakeStore) DeleteJob(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, id)
	return nil
}

func (f *fakeStore) CreateApplication(ctx context.Context, input *db.ApplicationCreateInput) (*types.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app := &types.Application{
		ID:                uuid.New(),
		JobID:             input.JobID,
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Email:             input.Email,
		Phone:             input.Phone,
		CurrentCompany:    input.CurrentCompany,
		CurrentPosition:   input.CurrentPosition,
		YearsOfExperience: input.YearsOfExperience,
		LinkedInURL:       input.LinkedInURL,
		PortfolioURL:      input.PortfolioURL,
		CoverLetter:       input.CoverLetter,
		Skills:            input.Skills,
		CVPath:            input.CVPath,
		CVFilename:        input.CVFilename,
		Status:            types.StatusPending,
		AppliedAt:         time.Now(),
	}
	f.applications[app.ID] = app
	return app, nil
}

func (f *fakeStore) GetApplicationByID(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applications[id], nil
}

func (f *fakeStore) FindApplicationByJobAndEmail(ctx context.Context, jobID uuid.UUID, email string) (*types.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, app := range f.applications {
		if app.JobID == jobID && strings.EqualFold(app.Email, email) {
			return app, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListApplications(ctx context.Context, opts db.ListApplicationsOptions) ([]types.Application, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var apps []types.Application
	for _, app := range f.applications {
		if opts.JobID != nil && app.JobID != *opts.JobID {
			continue
		}
		if opts.Status != "" && app.Status != opts.Status {
			continue
		}
		apps = append(apps, *app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].AppliedAt.After(apps[j].AppliedAt) })
	return apps, len(apps), nil
}

func (f *fakeStore) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status string) (*types.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.applications[id]
	if !ok {
		return nil, nil
	}
	app.Status = status
	return app, nil
}

func (f *fakeStore) SaveApplicationAnalysis(ctx context.Context, id uuid.UUID, a *types.AIAnalysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.applications[id]
	if !ok {
		return nil
	}
	app.AIAnalysis = a
	return nil
}

func (f *fakeStore) CreateUser(ctx context.Context, input *db.UserCreateInput) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	record := &db.UserRecord{
		User: types.User{
			ID:        uuid.New(),
			Name:      input.Name,
			Email:     strings.ToLower(input.Email),
			Phone:     input.Phone,
			Role:      input.Role,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: input.PasswordHash,
	}
	f.users[record.ID] = record
	return &record.User, nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &record.User, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*db.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.users {
		if strings.EqualFold(record.Email, email) {
			return record, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetUserRecordByID(ctx context.Context, id uuid.UUID) (*db.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	record, err := f.GetUserByEmail(ctx, email)
	return record != nil, err
}

func (f *fakeStore) UpdateUserPassword(ctx context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record, ok := f.users[id]; ok {
		record.PasswordHash = hash
	}
	return nil
}

func (f *fakeStore) UpdateUserProfile(ctx context.Context, id uuid.UUID, req *types.UpdateProfileRequest) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		record.Name = *req.Name
	}
	if req.Phone != nil {
		record.Phone = *req.Phone
	}
	return &record.User, nil
}

// newTestServer builds a server on a fake store with AI analysis disabled
// and rate limiting off.
func newTestServer(t *testing.T) (*Server, *fakeStore) {
	t.Helper()
	store := newFakeStore()

	analyzer := analysis.NewAnalyzer(nil)
	scheduler := analysis.NewScheduler(analyzer, store, time.Millisecond, 1)
	t.Cleanup(scheduler.Stop)

	limiter := ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	t.Cleanup(limiter.Stop)

	s := &Server{
		store:       store,
		validator:   validator.New(),
		rateLimiter: limiter,
		jwtService: NewJWTService(&config.JWTConfig{
			Secret:          "test-secret",
			ExpirationHours: 1,
		}),
		analyzer:   analyzer,
		scheduler:  scheduler,
		uploadDir:  t.TempDir(),
		maxCVBytes: 5 << 20,
	}
	s.userService = NewUserService(store, &config.PasswordConfig{BcryptCost: 10})
	return s, store
}

// seedJob inserts an active job with the given skills.
func seedJob(t *testing.T, store *fakeStore, skills []string) *types.Job {
	t.Helper()
	job, err := store.CreateJob(context.Background(), &types.CreateJobRequest{
		Title:   "Backend Engineer",
		Company: "Acme",
		Type:    "full-time",
		Skills:  skills,
	})
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

// applicationInput builds a minimal store input for seeding applications
// directly, bypassing the multipart handler.
func applicationInput(jobID uuid.UUID, email, skillList string) *db.ApplicationCreateInput {
	return &db.ApplicationCreateInput{
		JobID:     jobID,
		FirstName: "Dana",
		LastName:  "Reyes",
		Email:     email,
		Skills:    skillList,
	}
}

// adminToken returns a bearer token for an admin account.
func adminToken(t *testing.T, s *Server, store *fakeStore) string {
	t.Helper()
	user, err := store.CreateUser(context.Background(), &db.UserCreateInput{
		Name:         "Admin",
		Email:        "admin-" + uuid.NewString() + "@example.com",
		Role:         types.RoleAdmin,
		PasswordHash: "unused",
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
