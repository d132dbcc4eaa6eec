package analysis

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/mgarcia/jobboard/internal/types"
)

// Store is the persistence surface the scheduler needs.
type Store interface {
	GetApplicationByID(ctx context.Context, id uuid.UUID) (*types.Application, error)
	GetJobByID(ctx context.Context, id uuid.UUID) (*types.Job, error)
	SaveApplicationAnalysis(ctx context.Context, id uuid.UUID, analysis *types.AIAnalysis) error
}

// Scheduler warms AI analyses in the background shortly after an application
// is submitted, so the result is usually ready before an admin opens it.
// Each application is analyzed at most once; failures are logged and dropped
// (the synchronous analyze endpoint can always retry on demand).
type Scheduler struct {
	analyzer *Analyzer
	store    Store
	delay    time.Duration
	sem      *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that waits delay before each analysis and
// runs at most maxConcurrent analyses at a time.
func NewScheduler(analyzer *Analyzer, store Store, delay time.Duration, maxConcurrent int64) *Scheduler {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		analyzer: analyzer,
		store:    store,
		delay:    delay,
		sem:      semaphore.NewWeighted(maxConcurrent),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Schedule queues a background analysis for the application. It is a no-op
// when AI analysis is not configured or the scheduler has been stopped.
func (s *Scheduler) Schedule(applicationID uuid.UUID) {
	if s == nil || !s.analyzer.Available() {
		return
	}
	select {
	case <-s.ctx.Done():
		return
	default:
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(applicationID)
	}()
}

// Stop cancels pending work and waits for in-flight analyses to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) run(applicationID uuid.UUID) {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-s.ctx.Done():
		return
	case <-timer.C:
	}

	if err := s.sem.Acquire(s.ctx, 1); err != nil {
		return
	}
	defer s.sem.Release(1)

	app, err := s.store.GetApplicationByID(s.ctx, applicationID)
	if err != nil {
		log.Printf("[ai] scheduled analysis: load application %s: %v", applicationID, err)
		return
	}
	// Deleted before the delay fired, or already analyzed.
	if app == nil || app.AIAnalysis != nil {
		return
	}

	job, err := s.store.GetJobByID(s.ctx, app.JobID)
	if err != nil {
		log.Printf("[ai] scheduled analysis: load job %s: %v", app.JobID, err)
		return
	}
	if job == nil {
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, 60*time.Second)
	defer cancel()

	result, err := s.analyzer.Analyze(ctx, app, job)
	if err != nil {
		log.Printf("[ai] scheduled analysis failed for application %s: %v", applicationID, err)
		return
	}

	if err := s.store.SaveApplicationAnalysis(s.ctx, applicationID, result); err != nil {
		log.Printf("[ai] failed to persist analysis for application %s: %v", applicationID, err)
	}
}
