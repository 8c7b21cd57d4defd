package store

import "time"

// RunConfig echoes the configuration a run was started with, so stored
// results are self-describing.
type RunConfig struct {
	Algorithm string  `json:"algorithm"`
	Benchmark string  `json:"benchmark"`
	Dim       int     `json:"dim"`
	PopSize   int     `json:"popSize"`
	MaxEvals  int     `json:"maxEvals"`
	Tao       float64 `json:"tao,omitempty"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
	Seed      int64   `json:"seed"`
}

// RunResult is the persisted outcome of one completed optimization run.
// Only final results are stored; intermediate optimizer state (populations,
// control parameters) is deliberately not persisted.
type RunResult struct {
	// ID is the unique identifier for this run.
	ID string `json:"id"`

	// Config holds the settings the run was started with.
	Config RunConfig `json:"config"`

	// BestVector is the best solution found across the whole run.
	BestVector []float64 `json:"bestVector"`

	// BestFitness is the objective value of BestVector.
	BestFitness float64 `json:"bestFitness"`

	// Evaluations is the number of objective invocations actually spent.
	Evaluations int `json:"evaluations"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`

	// Timestamp records when the result was saved.
	Timestamp time.Time `json:"timestamp"`
}

// RunInfo is the listing view of a stored result, without the solution
// vector, so large result sets can be scanned cheaply.
type RunInfo struct {
	ID          string    `json:"id"`
	Algorithm   string    `json:"algorithm"`
	Benchmark   string    `json:"benchmark"`
	Dim         int       `json:"dim"`
	BestFitness float64   `json:"bestFitness"`
	Evaluations int       `json:"evaluations"`
	Timestamp   time.Time `json:"timestamp"`
}

// ToInfo converts a full result to its listing view.
func (r *RunResult) ToInfo() RunInfo {
	return RunInfo{
		ID:          r.ID,
		Algorithm:   r.Config.Algorithm,
		Benchmark:   r.Config.Benchmark,
		Dim:         r.Config.Dim,
		BestFitness: r.BestFitness,
		Evaluations: r.Evaluations,
		Timestamp:   r.Timestamp,
	}
}

// Store defines the persistence interface for completed run results.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if a result doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveResult atomically saves a run result, overwriting any existing
	// result with the same ID.
	SaveResult(result *RunResult) error

	// LoadResult retrieves the result for the given run ID.
	LoadResult(id string) (*RunResult, error)

	// ListResults returns metadata for all stored results.
	ListResults() ([]RunInfo, error)

	// DeleteResult removes the result and all associated artifacts
	// (result.json, trace.jsonl) for the given run ID.
	DeleteResult(id string) error
}

// ErrNotFound is returned when a requested result does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run result.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run result not found: " + e.RunID
	}
	return "run result not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
