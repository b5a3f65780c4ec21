// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a maintenance task run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration

	// Delay postpones the first run. Zero runs the job as soon as the
	// runner starts.
	Delay time.Duration

	// Timeout bounds a single run. Zero means the run is bounded only by
	// the runner's lifetime.
	Timeout time.Duration

	Run func(ctx context.Context) error
}

// Observer is told about every finished run. *metrics.Metrics satisfies it.
type Observer interface {
	JobFinished(name string, took time.Duration, err error)
}

// Runner owns one goroutine per registered job.
type Runner struct {
	logger   *zap.Logger
	observer Observer
	jobs     []Job

	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu     sync.Mutex
	active map[string]time.Time // job name -> start of the run in progress
}

// New creates a runner. observer may be nil.
func New(logger *zap.Logger, observer Observer) *Runner {
	return &Runner{
		logger:   logger,
		observer: observer,
		active:   make(map[string]time.Time),
	}
}

// Register adds a job. Jobs registered after Start are ignored.
func (r *Runner) Register(job Job) {
	r.jobs = append(r.jobs, job)
}

// Start launches every registered job.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	names := make([]string, 0, len(r.jobs))
	for _, job := range r.jobs {
		names = append(names, job.Name)
		r.wg.Add(1)
		go r.loop(ctx, job)
	}

	r.logger.Info("maintenance jobs started", zap.Strings("jobs", names))
}

// Stop cancels all jobs and waits for in-flight runs to return. When ctx
// expires first, the names of the runs still going are logged and ctx.Err()
// is returned.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("maintenance jobs stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("maintenance jobs did not stop in time",
			zap.Strings("still_running", r.Active()))
		return ctx.Err()
	}
}

// Active returns the sorted names of jobs with a run in progress.
func (r *Runner) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.active))
	for name := range r.active {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	if job.Delay > 0 {
		t := time.NewTimer(job.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
	r.run(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.run(ctx, job)
		}
	}
}

func (r *Runner) run(ctx context.Context, job Job) {
	start := time.Now()
	r.mu.Lock()
	r.active[job.Name] = start
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.active, job.Name)
		r.mu.Unlock()
	}()

	runCtx := ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	err := job.Run(runCtx)
	took := time.Since(start)

	// A run cut short by shutdown is not a failure.
	if err != nil && ctx.Err() != nil {
		r.logger.Debug("job interrupted by shutdown", zap.String("job", job.Name))
		return
	}
	if r.observer != nil {
		r.observer.JobFinished(job.Name, took, err)
	}
	if err != nil {
		r.logger.Error("job failed",
			zap.String("job", job.Name),
			zap.Duration("took", took),
			zap.Error(err))
		return
	}
	r.logger.Debug("job finished", zap.String("job", job.Name), zap.Duration("took", took))
}
