package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OCAP2/spacetime/internal/model"
	"github.com/OCAP2/spacetime/internal/queue"
	"github.com/OCAP2/spacetime/internal/timemap"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ErrInvalidInterval is returned by Start when the sampling interval is not positive.
var ErrInvalidInterval = errors.New("monitor interval must be positive")

// StatsSource is anything that can summarise an index.
type StatsSource interface {
	Stats() timemap.Stats
}

// Sink persists batches of samples.
type Sink interface {
	Name() string
	WriteSamples(ctx context.Context, samples []model.IndexSample) error
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Source    StatsSource
	Sinks     []Sink
	Logger    *slog.Logger
	SessionID uuid.UUID
	Interval  time.Duration
	BatchSize int
	// QueueSize bounds the samples held between flushes; oldest are dropped.
	QueueSize int
}

// Service samples index statistics on an interval and flushes them to its sinks.
type Service struct {
	deps  Dependencies
	queue *queue.Queue[model.IndexSample]

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = 50
	}
	if deps.QueueSize <= 0 {
		deps.QueueSize = deps.BatchSize * 20
	}
	return &Service{
		deps:  deps,
		queue: queue.NewBounded[model.IndexSample](deps.QueueSize),
	}
}

// NewSample converts index statistics to a storable sample.
func NewSample(sessionID uuid.UUID, stats timemap.Stats, at time.Time) model.IndexSample {
	occupancy, err := json.Marshal(stats.SliceOccupancy)
	if err != nil || stats.SliceOccupancy == nil {
		occupancy = []byte("[]")
	}
	return model.IndexSample{
		SessionID:      sessionID,
		SampledAt:      at,
		CurrentSlice:   stats.Current,
		OldestSlice:    stats.Oldest,
		Retained:       stats.Retained,
		Capacity:       stats.Capacity,
		OccupiedCells:  stats.OccupiedCells,
		Advances:       stats.Advances,
		Evictions:      stats.Evictions,
		AutoStep:       stats.AutoStep,
		SliceOccupancy: datatypes.JSON(occupancy),
	}
}

// IsRunning returns whether the sampling goroutine is alive
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningLocked()
}

func (s *Service) runningLocked() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Pending returns the number of samples waiting for the next flush.
func (s *Service) Pending() int {
	return s.queue.Len()
}

// Dropped returns the number of samples discarded because the queue was full.
func (s *Service) Dropped() uint64 {
	return s.queue.Dropped()
}

// Sample takes one sample immediately and queues it.
func (s *Service) Sample() model.IndexSample {
	sample := NewSample(s.deps.SessionID, s.deps.Source.Stats(), time.Now().UTC())
	s.queue.Push(sample)
	return sample
}

// Flush writes every queued sample to every sink in batches. A failing sink
// does not stop the others; all errors are returned joined.
func (s *Service) Flush(ctx context.Context) error {
	var errs []error
	for {
		batch := s.queue.Take(s.deps.BatchSize)
		if len(batch) == 0 {
			break
		}
		for _, sink := range s.deps.Sinks {
			if err := sink.WriteSamples(ctx, batch); err != nil {
				s.deps.Logger.Error("Error writing index samples", "sink", sink.Name(), "count", len(batch), "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Start starts the sampling goroutine. It stops when ctx is cancelled or
// Stop is called, flushing whatever is still queued.
func (s *Service) Start(ctx context.Context) error {
	if s.deps.Interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runningLocked() {
		return nil
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(ctx, s.stop, s.done)
	return nil
}

func (s *Service) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	logger := s.deps.Logger
	logger.Debug("Starting index monitor", "interval", s.deps.Interval, "sinks", len(s.deps.Sinks))

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.final(logger)
			return
		case <-stop:
			s.final(logger)
			return
		case <-ticker.C:
			s.Sample()
			if s.queue.Len() >= s.deps.BatchSize {
				_ = s.Flush(ctx)
			}
		}
	}
}

func (s *Service) final(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		logger.Warn("Final flush incomplete", "error", err)
	}
	logger.Debug("Index monitor stopped", "dropped", s.queue.Dropped())
}

// Stop stops the sampling goroutine and waits for its final flush.
func (s *Service) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop = nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}
