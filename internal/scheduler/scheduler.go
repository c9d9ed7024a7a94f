package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"marquee/internal/logging"
)

const defaultJobTimeout = 30 * time.Minute

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// JobInfo describes a registered job.
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	NextRun  time.Time `json:"next_run"`
	LastRun  time.Time `json:"last_run,omitzero"`
}

type entry struct {
	id       cron.EntryID
	schedule string
}

// Scheduler runs named jobs on cron schedules. A job never overlaps with
// itself: a tick that arrives while the previous run is still going is
// skipped.
type Scheduler struct {
	cron       *cron.Cron
	logger     *slog.Logger
	jobTimeout time.Duration

	mu   sync.Mutex
	jobs map[string]entry
}

// New creates a scheduler in the local time zone. jobTimeout <= 0 means 30
// minutes.
func New(logger *slog.Logger, jobTimeout time.Duration) *Scheduler {
	if jobTimeout <= 0 {
		jobTimeout = defaultJobTimeout
	}
	logger = logging.NewComponentLogger(logger, "scheduler")
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{logger}),
			cron.SkipIfStillRunning(cronLogger{logger}),
		)),
		logger:     logger,
		jobTimeout: jobTimeout,
		jobs:       make(map[string]entry),
	}
}

// AddJob registers job under name with a standard five-field cron
// expression or a descriptor such as "@daily". Re-adding a name replaces the
// previous registration.
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[name]; ok {
		s.cron.Remove(existing.id)
		delete(s.jobs, name)
	}
	id, err := s.cron.AddFunc(schedule, func() {
		if err := s.run(context.Background(), name, job); err != nil {
			logging.WarnWithContext(s.logger, "scheduled job failed", "scheduled_job_failed",
				logging.String("job", name),
				logging.Error(err),
				logging.String(logging.FieldImpact, "retried at the next scheduled run"),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}
	s.jobs[name] = entry{id: id, schedule: schedule}
	s.logger.Info("scheduled job added", logging.String("job", name), logging.String("schedule", schedule))
	return nil
}

// RemoveJob unregisters a job. Unknown names are ignored.
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.jobs[name]; ok {
		s.cron.Remove(existing.id)
		delete(s.jobs, name)
	}
}

// RunNow executes job immediately on the caller's goroutine.
func (s *Scheduler) RunNow(ctx context.Context, name string, job Job) error {
	return s.run(ctx, name, job)
}

func (s *Scheduler) run(ctx context.Context, name string, job Job) error {
	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()
	started := time.Now()
	s.logger.Info("scheduled job started", logging.String("job", name))
	if err := job(ctx); err != nil {
		return err
	}
	s.logger.Info("scheduled job completed",
		logging.String("job", name),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler. The returned context is done once running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Jobs lists registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	infos := make([]JobInfo, 0, len(s.jobs))
	for name, e := range s.jobs {
		entry := s.cron.Entry(e.id)
		infos = append(infos, JobInfo{
			Name:     name,
			Schedule: e.schedule,
			NextRun:  entry.Next,
			LastRun:  entry.Prev,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{logging.Error(err)}, keysAndValues...)...)
}
