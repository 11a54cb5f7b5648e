// Package worker runs bracket simulations off the request path.
// This decouples HTTP request handling from long-running simulations, providing:
// - Backpressure handling via load shedding
// - Chunked result writes to ClickHouse
// - Job status tracking for polling clients
// - Graceful shutdown that settles every accepted job

package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/openmohaa/bracket-api/internal/models"
)

// ErrQueueFull is returned by Submit when the job was shed.
var ErrQueueFull = errors.New("simulation queue full")

// Prometheus metrics
var (
	jobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bracket_simulations_enqueued_total",
		Help: "Total number of simulation jobs accepted",
	})

	jobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bracket_simulations_completed_total",
		Help: "Total number of simulation jobs completed",
	})

	jobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bracket_simulations_failed_total",
		Help: "Total number of simulation jobs that failed",
	})

	jobsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bracket_simulations_load_shed_total",
		Help: "Total number of simulation jobs dropped due to load shedding",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bracket_worker_queue_depth",
		Help: "Current depth of the simulation queue",
	})

	simulationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bracket_simulation_duration_seconds",
		Help:    "Duration of simulation jobs, including result writes",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	resultRowsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bracket_result_rows_written_total",
		Help: "Total number of slot results written to ClickHouse",
	})
)

// Simulator runs one simulation request.
type Simulator interface {
	Simulate(ctx context.Context, req models.SimulationRequest) (*models.SimulationResult, error)
}

// ResultSink persists per-slot results.
type ResultSink interface {
	WriteResults(ctx context.Context, res *models.SimulationResult) (int, error)
}

// JobStore keeps job status for polling.
type JobStore interface {
	SaveJob(ctx context.Context, job *models.JobStatus) error
	GetJob(ctx context.Context, id string) (*models.JobStatus, error)
}

// Job represents a unit of work for the worker pool
type Job struct {
	ID        string
	Request   models.SimulationRequest
	Timestamp time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount int
	QueueSize   int
	// JobTimeout bounds a single simulation; zero means no limit.
	JobTimeout time.Duration
	Simulator  Simulator
	Results    ResultSink // optional
	Jobs       JobStore
	Logger     *zap.Logger
}

// Pool manages a pool of workers for async simulations
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	// Start queue depth reporter
	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
	)
}

// Stop cancels running simulations, waits for the workers and marks every
// job still queued as failed.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.logger.Info("Stopping worker pool...")

	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	close(p.jobQueue)
	dropped := 0
	for job := range p.jobQueue {
		p.finish(job, nil, errors.New("server shutting down"))
		dropped++
	}
	p.logger.Infow("Worker pool stopped", "droppedJobs", dropped)
}

// Submit records a queued job and hands it to the workers. It never blocks:
// a full queue sheds the job and returns ErrQueueFull.
func (p *Pool) Submit(ctx context.Context, req models.SimulationRequest) (*models.JobStatus, error) {
	job := Job{
		ID:        uuid.NewString(),
		Request:   req,
		Timestamp: time.Now().UTC(),
	}
	status := &models.JobStatus{
		ID:        job.ID,
		Status:    models.JobQueued,
		Season:    req.Season,
		Runs:      req.Runs,
		CreatedAt: job.Timestamp,
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		jobsLoadShed.Inc()
		return nil, ErrQueueFull
	}

	if err := p.config.Jobs.SaveJob(ctx, status); err != nil {
		return nil, fmt.Errorf("save job %s: %w", job.ID, err)
	}

	select {
	case p.jobQueue <- job:
		jobsEnqueued.Inc()
		return status, nil
	default:
		jobsLoadShed.Inc()
		p.logger.Warnw("Simulation queue full, shedding job", "job", job.ID, "season", req.Season)
		p.finish(job, nil, ErrQueueFull)
		return nil, ErrQueueFull
	}
}

// Status returns the stored state of a job.
func (p *Pool) Status(ctx context.Context, id string) (*models.JobStatus, error) {
	return p.config.Jobs.GetJob(ctx, id)
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker processes jobs from the queue one at a time
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Infow("Worker started", "worker", id)

	for {
		select {
		case job := <-p.jobQueue:
			p.process(id, job)
		case <-p.ctx.Done():
			p.logger.Infow("Context done, worker exiting", "worker", id)
			return
		}
	}
}

func (p *Pool) process(workerID int, job Job) {
	start := time.Now()

	running := &models.JobStatus{
		ID:        job.ID,
		Status:    models.JobRunning,
		Season:    job.Request.Season,
		Runs:      job.Request.Runs,
		CreatedAt: job.Timestamp,
	}
	p.save(running)

	ctx := p.ctx
	if p.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.JobTimeout)
		defer cancel()
	}

	res, err := p.config.Simulator.Simulate(ctx, job.Request)
	if err == nil {
		// Rows and status share the job id so clients can join them.
		res.ID = job.ID
		if p.config.Results != nil {
			var n int
			n, err = p.config.Results.WriteResults(ctx, res)
			resultRowsWritten.Add(float64(n))
		}
	}
	simulationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		p.logger.Errorw("Simulation job failed",
			"worker", workerID,
			"job", job.ID,
			"season", job.Request.Season,
			"error", err,
		)
	} else {
		p.logger.Infow("Simulation job completed",
			"worker", workerID,
			"job", job.ID,
			"season", job.Request.Season,
			"runs", res.Runs,
			"duration", time.Since(start),
		)
	}
	p.finish(job, res, err)
}

// finish stores the terminal state of a job.
func (p *Pool) finish(job Job, res *models.SimulationResult, err error) {
	now := time.Now().UTC()
	status := &models.JobStatus{
		ID:         job.ID,
		Season:     job.Request.Season,
		Runs:       job.Request.Runs,
		CreatedAt:  job.Timestamp,
		FinishedAt: &now,
	}
	if err != nil {
		status.Status = models.JobFailed
		status.Error = err.Error()
		jobsFailed.Inc()
	} else {
		status.Status = models.JobDone
		status.Runs = res.Runs
		summary := res.Summary
		status.Summary = &summary
		jobsCompleted.Inc()
	}
	p.save(status)
}

// save writes status on a fresh context so shutdown does not lose it.
func (p *Pool) save(status *models.JobStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.config.Jobs.SaveJob(ctx, status); err != nil {
		p.logger.Warnw("Failed to save job status", "job", status.ID, "status", status.Status, "error", err)
	}
}

// reportQueueDepth updates the queue depth metric periodically
func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
