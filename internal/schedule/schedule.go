// Package schedule runs the daily pipeline as a cron daemon. Jobs
// register once at startup; each run is retried on failure and its
// outcome kept in an in-memory history the status API reads.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mwt/signals/pkg/logger"
)

// Scheduler owns the cron runner and the per-job run history.
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	history map[string]*history
	mu      sync.RWMutex

	maxRetries int
	retryDelay time.Duration
}

// New builds a scheduler whose cron expressions are evaluated in loc,
// so "16:30" means exchange-local time regardless of the host clock.
func New(log *logger.Logger, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		logger:     log,
		jobs:       make(map[string]Job),
		history:    make(map[string]*history),
		maxRetries: 2,
		retryDelay: 30 * time.Second,
	}
}

// AddJob registers a job under its cron spec.
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}
	if _, err := s.cron.AddFunc(job.Spec(), func() { s.runJob(job) }); err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}
	s.jobs[name] = job
	s.history[name] = &history{}

	s.logger.WithFields(map[string]interface{}{
		"job":  name,
		"spec": job.Spec(),
	}).Info("Job registered")
	return nil
}

// Start begins cron dispatch.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop halts dispatch and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// TriggerJob runs a registered job immediately, outside its schedule.
func (s *Scheduler) TriggerJob(name string) error {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}
	go s.runJob(job)
	return nil
}

// JobNames lists registered jobs.
func (s *Scheduler) JobNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// JobStatus summarizes one job for the status API.
type JobStatus struct {
	Name        string  `json:"name"`
	Spec        string  `json:"spec"`
	TotalRuns   int     `json:"total_runs"`
	SuccessRate float64 `json:"success_rate"`
	LastRun     *Result `json:"last_run,omitempty"`
}

// Status reports every registered job with its recent outcomes.
func (s *Scheduler) Status() []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]JobStatus, 0, len(s.jobs))
	for name, job := range s.jobs {
		h := s.history[name]
		statuses = append(statuses, JobStatus{
			Name:        name,
			Spec:        job.Spec(),
			TotalRuns:   len(h.results),
			SuccessRate: h.successRate(),
			LastRun:     h.last(),
		})
	}
	return statuses
}

// runJob executes one job with retries and records the outcome.
func (s *Scheduler) runJob(job Job) {
	name := job.Name()
	start := time.Now()
	s.logger.WithField("job", name).Info("Job started")

	var lastErr error
	success := false
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := job.Run(context.Background()); err == nil {
			success = true
			break
		} else {
			lastErr = err
		}
		s.logger.WithFields(map[string]interface{}{
			"job":     name,
			"attempt": attempt + 1,
		}).WithError(lastErr).Warn("Job attempt failed")
		if attempt < s.maxRetries {
			time.Sleep(s.retryDelay)
		}
	}

	result := Result{
		JobName:   name,
		StartTime: start,
		Duration:  time.Since(start),
		Success:   success,
	}
	if !success {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if h, ok := s.history[name]; ok {
		h.add(result)
	}
	s.mu.Unlock()

	if success {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration.String(),
		}).Info("Job completed")
	} else {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration.String(),
		}).WithError(lastErr).Error("Job failed after retries")
	}
}
