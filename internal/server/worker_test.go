package server

import (
	"context"
	"errors"
	"testing"

	"github.com/cwbudde/evosolve/internal/store"
)

func TestRunJobCompletes(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testRequest())

	if err := runJob(context.Background(), jm, nil, "", job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	got, _ := jm.GetJob(job.ID)
	if got.State != StateCompleted {
		t.Fatalf("Expected completed state, got %s (error: %s)", got.State, got.Error)
	}
	if len(got.BestVector) != 2 {
		t.Errorf("Expected 2 vector components, got %d", len(got.BestVector))
	}
	if got.Evaluations < 200 {
		t.Errorf("Expected at least 200 evaluations, got %d", got.Evaluations)
	}
	if got.EndTime == nil {
		t.Error("Expected end time to be set")
	}
}

func TestRunJobPersistsResultAndTrace(t *testing.T) {
	dataDir := t.TempDir()
	st, err := store.NewFSStore(dataDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	jm := NewJobManager()
	job := jm.CreateJob(testRequest())

	if err := runJob(context.Background(), jm, st, dataDir, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	saved, err := st.LoadResult(job.ID)
	if err != nil {
		t.Fatalf("LoadResult failed: %v", err)
	}
	if saved.Config.Algorithm != "jde" || saved.Config.Benchmark != "sphere" {
		t.Errorf("Unexpected saved config: %+v", saved.Config)
	}
	if saved.Evaluations < 200 {
		t.Errorf("Expected at least 200 evaluations in saved result, got %d", saved.Evaluations)
	}

	entries, err := store.ReadTrace(dataDir, job.ID)
	if err != nil {
		t.Fatalf("ReadTrace failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("Expected at least one trace entry")
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].BestFitness > entries[i-1].BestFitness {
			t.Errorf("Trace fitness rose at entry %d", i)
		}
	}
}

func TestRunJobUnknownBenchmark(t *testing.T) {
	jm := NewJobManager()
	req := testRequest()
	req.Benchmark = "everest"
	job := jm.CreateJob(req)

	if err := runJob(context.Background(), jm, nil, "", job.ID); err == nil {
		t.Fatal("Expected error for unknown benchmark")
	}

	got, _ := jm.GetJob(job.ID)
	if got.State != StateFailed {
		t.Errorf("Expected failed state, got %s", got.State)
	}
	if got.Error == "" {
		t.Error("Expected error message to be recorded")
	}
}

func TestRunJobUnknownAlgorithm(t *testing.T) {
	jm := NewJobManager()
	req := testRequest()
	req.Algorithm = "warp-drive"
	job := jm.CreateJob(req)

	if err := runJob(context.Background(), jm, nil, "", job.ID); err == nil {
		t.Fatal("Expected error for unknown algorithm")
	}

	got, _ := jm.GetJob(job.ID)
	if got.State != StateFailed {
		t.Errorf("Expected failed state, got %s", got.State)
	}
}

func TestRunJobMissing(t *testing.T) {
	jm := NewJobManager()
	if err := runJob(context.Background(), jm, nil, "", "nope"); err == nil {
		t.Fatal("Expected error for missing job")
	}
}

func TestMarkJobFailed(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testRequest())

	markJobFailed(jm, job.ID, errors.New("boom"))

	got, _ := jm.GetJob(job.ID)
	if got.State != StateFailed {
		t.Errorf("Expected failed state, got %s", got.State)
	}
	if got.Error != "boom" {
		t.Errorf("Expected error message 'boom', got %q", got.Error)
	}
}
