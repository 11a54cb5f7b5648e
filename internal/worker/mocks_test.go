package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/openmohaa/bracket-api/internal/models"
)

// MockSimulator returns a fixed summary, or blocks until its context ends
// when Block is set.
type MockSimulator struct {
	Block bool
	Err   error
	Calls atomic.Int32
}

func (m *MockSimulator) Simulate(ctx context.Context, req models.SimulationRequest) (*models.SimulationResult, error) {
	m.Calls.Add(1)
	if m.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.Err != nil {
		return nil, m.Err
	}
	runs := req.Runs
	if runs == 0 {
		runs = 10
	}
	res := &models.SimulationResult{
		ID:     "generated",
		Season: req.Season,
		Runs:   runs,
		Summary: models.BracketSummary{
			Runs:      runs,
			Champions: map[int]float64{1101: 1},
		},
	}
	for i := 1; i <= runs; i++ {
		res.Results = append(res.Results, models.SlotResult{Run: i, Slot: "R1W1", TeamID: 1101, Seed: "W01"})
	}
	return res, nil
}

// MockJobStore keeps every saved status, newest last.
type MockJobStore struct {
	mu      sync.Mutex
	History map[string][]models.JobStatus
	SaveErr error
}

func NewMockJobStore() *MockJobStore {
	return &MockJobStore{History: make(map[string][]models.JobStatus)}
}

func (m *MockJobStore) SaveJob(ctx context.Context, job *models.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.History[job.ID] = append(m.History[job.ID], *job)
	return nil
}

func (m *MockJobStore) GetJob(ctx context.Context, id string) (*models.JobStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.History[id]
	if len(h) == 0 {
		return nil, models.ErrNotFound
	}
	last := h[len(h)-1]
	return &last, nil
}

func (m *MockJobStore) Latest(id string) (models.JobStatus, bool) {
	job, err := m.GetJob(context.Background(), id)
	if err != nil {
		return models.JobStatus{}, false
	}
	return *job, true
}

// MockResultSink records written simulation ids.
type MockResultSink struct {
	mu  sync.Mutex
	IDs []string
	Err error
}

func (m *MockResultSink) WriteResults(ctx context.Context, res *models.SimulationResult) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	m.IDs = append(m.IDs, res.ID)
	return len(res.Results), nil
}

var errSimFailed = errors.New("bracket slot unresolved")
