package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobState represents the current state of an optimization run job.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
)

// RunRequest is the configuration a client submits to start a run. Lower and
// Upper override the benchmark's canonical bounds when both are set.
type RunRequest struct {
	Algorithm string  `json:"algorithm"`
	Benchmark string  `json:"benchmark"`
	Dim       int     `json:"dim"`
	PopSize   int     `json:"popSize"`
	MaxEvals  int     `json:"maxEvals"`
	Tao       float64 `json:"tao,omitempty"`
	Lower     float64 `json:"lower,omitempty"`
	Upper     float64 `json:"upper,omitempty"`
	Seed      int64   `json:"seed"`
}

// Job represents one optimization run and its live progress.
type Job struct {
	ID          string     `json:"id"`
	State       JobState   `json:"state"`
	Config      RunRequest `json:"config"`
	BestVector  []float64  `json:"bestVector,omitempty"`
	BestFitness float64    `json:"bestFitness"`
	Generations int        `json:"generations"`
	Evaluations int        `json:"evaluations"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// JobManager manages the lifecycle of run jobs.
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	broadcaster *EventBroadcaster
}

// NewJobManager creates a new JobManager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob registers a new pending job for the given request.
func (jm *JobManager) CreateJob(req RunRequest) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    req,
		StartTime: time.Now(),
	}
	jm.jobs[job.ID] = job
	return job
}

// GetJob returns a snapshot copy of a job by ID, so callers can read fields
// without racing the worker.
func (jm *JobManager) GetJob(id string) (Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return Job{}, false
	}
	return *job, true
}

// ListJobs returns snapshot copies of all jobs.
func (jm *JobManager) ListJobs() []Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// UpdateJob atomically updates a job using the provided function.
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}
	updateFn(job)
	return nil
}
