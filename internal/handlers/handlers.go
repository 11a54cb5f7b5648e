package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/openmohaa/bracket-api/internal/logic"
	"github.com/openmohaa/bracket-api/internal/models"
)

// MaxBodySize limits the size of request bodies to 64KB
const MaxBodySize = 65536

// SimulationQueue defines the interface for the simulation worker pool
type SimulationQueue interface {
	Submit(ctx context.Context, req models.SimulationRequest) (*models.JobStatus, error)
	Status(ctx context.Context, id string) (*models.JobStatus, error)
	QueueDepth() int
}

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type Config struct {
	WorkerPool SimulationQueue
	Forecast   logic.ForecastService
	// Dependencies are pinged by /ready, keyed by name.
	Dependencies map[string]Pinger
	Logger       *zap.Logger
	// StreamPoll is how often a status stream re-reads its job.
	StreamPoll time.Duration
}

type Handler struct {
	pool      SimulationQueue
	forecast  logic.ForecastService
	deps      map[string]Pinger
	logger    *zap.SugaredLogger
	validator *validator.Validate

	streamPoll time.Duration
}

func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.StreamPoll <= 0 {
		cfg.StreamPoll = 500 * time.Millisecond
	}
	return &Handler{
		pool:      cfg.WorkerPool,
		forecast:  cfg.Forecast,
		deps:      cfg.Dependencies,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),

		streamPoll: cfg.StreamPoll,
	}
}
