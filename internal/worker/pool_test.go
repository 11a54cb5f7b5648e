package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/openmohaa/bracket-api/internal/models"
)

// waitForStatus polls the store until the job reaches want or the deadline passes.
func waitForStatus(t *testing.T, store *MockJobStore, id, want string) models.JobStatus {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if job, ok := store.Latest(id); ok && job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := store.Latest(id)
	t.Fatalf("job %s status = %q, want %q", id, job.Status, want)
	return job
}

func TestSubmitFull(t *testing.T) {
	// Create a pool manually so no worker drains the queue
	store := NewMockJobStore()
	cfg := PoolConfig{
		QueueSize: 1,
		Jobs:      store,
		Logger:    zap.NewNop(),
	}

	pool := &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}

	first, err := pool.Submit(context.Background(), models.SimulationRequest{Season: 2024})
	if err != nil {
		t.Fatalf("Failed to submit first job: %v", err)
	}
	if first.Status != models.JobQueued {
		t.Errorf("first job status = %q, want queued", first.Status)
	}

	start := time.Now()
	_, err = pool.Submit(context.Background(), models.SimulationRequest{Season: 2024})
	duration := time.Since(start)

	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("Submit error = %v, want ErrQueueFull", err)
	}
	if duration > 10*time.Millisecond {
		t.Errorf("Submit took too long (%v), expected immediate return", duration)
	}
	if pool.QueueDepth() != 1 {
		t.Errorf("QueueDepth() = %d, want 1", pool.QueueDepth())
	}

	shed := 0
	for id, h := range store.History {
		if id != first.ID && h[len(h)-1].Status == models.JobFailed {
			shed++
		}
	}
	if shed != 1 {
		t.Errorf("shed jobs recorded as failed = %d, want 1", shed)
	}
}

func TestSubmit_StoreError(t *testing.T) {
	store := NewMockJobStore()
	store.SaveErr = errors.New("redis down")
	pool := NewPool(PoolConfig{QueueSize: 1, Jobs: store, Logger: zap.NewNop()})

	if _, err := pool.Submit(context.Background(), models.SimulationRequest{Season: 2024}); err == nil || errors.Is(err, ErrQueueFull) {
		t.Errorf("Submit error = %v, want store error", err)
	}
	if pool.QueueDepth() != 0 {
		t.Error("job enqueued although its status could not be saved")
	}
}

func TestPool_ProcessesJob(t *testing.T) {
	store := NewMockJobStore()
	sink := &MockResultSink{}
	pool := NewPool(PoolConfig{
		WorkerCount: 2,
		QueueSize:   10,
		Simulator:   &MockSimulator{},
		Results:     sink,
		Jobs:        store,
		Logger:      zap.NewNop(),
	})
	pool.Start(context.Background())
	defer pool.Stop()

	status, err := pool.Submit(context.Background(), models.SimulationRequest{Season: 2024, Runs: 25})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	done := waitForStatus(t, store, status.ID, models.JobDone)
	if done.Summary == nil || done.Summary.Runs != 25 {
		t.Errorf("summary = %+v, want 25 runs", done.Summary)
	}
	if done.FinishedAt == nil {
		t.Error("finished job has no FinishedAt")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.IDs) != 1 || sink.IDs[0] != status.ID {
		t.Errorf("results written under %v, want [%s]", sink.IDs, status.ID)
	}

	got, err := pool.Status(context.Background(), status.ID)
	if err != nil || got.Status != models.JobDone {
		t.Errorf("Status() = %+v, %v", got, err)
	}
}

func TestPool_Failures(t *testing.T) {
	tests := []struct {
		name string
		sim  *MockSimulator
		sink *MockResultSink
	}{
		{name: "simulation error", sim: &MockSimulator{Err: errSimFailed}, sink: &MockResultSink{}},
		{name: "result write error", sim: &MockSimulator{}, sink: &MockResultSink{Err: errors.New("clickhouse unavailable")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMockJobStore()
			pool := NewPool(PoolConfig{
				WorkerCount: 1,
				QueueSize:   1,
				Simulator:   tt.sim,
				Results:     tt.sink,
				Jobs:        store,
				Logger:      zap.NewNop(),
			})
			pool.Start(context.Background())
			defer pool.Stop()

			status, err := pool.Submit(context.Background(), models.SimulationRequest{Season: 2024, Runs: 5})
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			failed := waitForStatus(t, store, status.ID, models.JobFailed)
			if failed.Error == "" {
				t.Error("failed job has no error message")
			}
			if failed.Summary != nil {
				t.Error("failed job carries a summary")
			}
		})
	}
}

func TestPool_JobTimeout(t *testing.T) {
	store := NewMockJobStore()
	pool := NewPool(PoolConfig{
		WorkerCount: 1,
		QueueSize:   1,
		JobTimeout:  20 * time.Millisecond,
		Simulator:   &MockSimulator{Block: true},
		Jobs:        store,
		Logger:      zap.NewNop(),
	})
	pool.Start(context.Background())
	defer pool.Stop()

	status, err := pool.Submit(context.Background(), models.SimulationRequest{Season: 2024})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	waitForStatus(t, store, status.ID, models.JobFailed)
}

func TestPool_StopSettlesQueuedJobs(t *testing.T) {
	store := NewMockJobStore()
	sim := &MockSimulator{Block: true}
	pool := NewPool(PoolConfig{
		WorkerCount: 1,
		QueueSize:   5,
		Simulator:   sim,
		Jobs:        store,
		Logger:      zap.NewNop(),
	})
	pool.Start(context.Background())

	var ids []string
	for i := 0; i < 3; i++ {
		status, err := pool.Submit(context.Background(), models.SimulationRequest{Season: 2024})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		ids = append(ids, status.ID)
	}

	pool.Stop()

	for _, id := range ids {
		job, ok := store.Latest(id)
		if !ok || job.Status != models.JobFailed {
			t.Errorf("job %s status = %q after Stop, want failed", id, job.Status)
		}
	}

	if _, err := pool.Submit(context.Background(), models.SimulationRequest{Season: 2024}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Submit after Stop error = %v, want ErrQueueFull", err)
	}
	pool.Stop()
}
