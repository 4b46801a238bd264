// Package schedule runs a task right away and then on a fixed interval until
// the returned Job is stopped or its context ends.
//
// Usage:
//
//	job := schedule.Every(5 * time.Second).
//	    Name("orders.poll").
//	    WithoutOverlapping().
//	    Start(ctx, func(ctx context.Context) { refresh(ctx) })
//	defer job.Stop()
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Task is one run of a scheduled job. ctx is cancelled when the job stops.
type Task func(ctx context.Context)

// Schedule is a fluent builder for a Job before it starts.
type Schedule struct {
	interval  time.Duration
	name      string
	noOverlap bool
	log       *slog.Logger
}

// Every starts a builder that fires every d. Non-positive d means one second.
func Every(d time.Duration) *Schedule {
	if d <= 0 {
		d = time.Second
	}
	return &Schedule{interval: d, name: "task"}
}

// Name gives the job an identifier for logging.
func (s *Schedule) Name(id string) *Schedule {
	s.name = id
	return s
}

// WithoutOverlapping skips a tick while the previous run is still executing.
func (s *Schedule) WithoutOverlapping() *Schedule {
	s.noOverlap = true
	return s
}

// Logger overrides logger.L for this job.
func (s *Schedule) Logger(l *slog.Logger) *Schedule {
	s.log = l
	return s
}

// Start dispatches task once immediately and then on every tick.
func (s *Schedule) Start(ctx context.Context, task Task) *Job {
	log := s.log
	if log == nil {
		log = logger.L
	}

	ctx, cancel := context.WithCancel(ctx)
	j := &Job{
		name:      s.name,
		interval:  s.interval,
		noOverlap: s.noOverlap,
		task:      task,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go j.run()
	log.Debug("schedule: job started", "id", j.name, "interval", j.interval)
	return j
}

// Job is a running schedule.
type Job struct {
	name      string
	interval  time.Duration
	noOverlap bool
	task      Task
	log       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

func (j *Job) run() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.dispatch()
	for {
		select {
		case <-j.ctx.Done():
			j.wg.Wait()
			j.log.Debug("schedule: job stopped", "id", j.name)
			return
		case <-ticker.C:
			j.dispatch()
		}
	}
}

func (j *Job) dispatch() {
	j.mu.Lock()
	if j.noOverlap && j.running {
		j.mu.Unlock()
		j.log.Warn("schedule: skipping overlapping run", "id", j.name)
		return
	}
	j.running = true
	j.mu.Unlock()

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		defer func() {
			j.mu.Lock()
			j.running = false
			j.mu.Unlock()
			if r := recover(); r != nil {
				j.log.Error("schedule: task panicked", "id", j.name, "panic", r)
			}
		}()

		if j.ctx.Err() != nil {
			return
		}
		j.task(j.ctx)
	}()
}

// Stop cancels the job and waits for any in-flight run to return.
// Safe to call more than once and from multiple goroutines.
func (j *Job) Stop() {
	j.cancel()
	<-j.done
}

// Done is closed once the job has fully stopped.
func (j *Job) Done() <-chan struct{} { return j.done }

// Stopped reports whether the job has been cancelled.
func (j *Job) Stopped() bool { return j.ctx.Err() != nil }
