// Package timemap tracks the 3D positions of entities over a sliding window of
// discrete time slices.
//
// An Index owns a fixed number of slices, each exactly one time resolution
// apart. Writes go to the current slice or to a slice located by its exact
// timestamp; once the window is full, advancing time silently evicts the
// oldest slice. Every operation on the window is serialised by one exclusive
// lock, so an Index may be shared between goroutines and with its own
// background stepper.
//
// Entity identifiers are any comparable type; the zero value of that type is
// the empty sentinel and is never reported as an occupant.
package timemap

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

var (
	// ErrInvalidCapacity is returned when the window would hold no slices
	ErrInvalidCapacity = errors.New("capacity must be positive")
	// ErrInvalidSpaceResolution is returned for a non-positive or non-finite spatial resolution
	ErrInvalidSpaceResolution = errors.New("space resolution must be positive and finite")
	// ErrInvalidTimeResolution is returned for a non-positive time resolution
	ErrInvalidTimeResolution = errors.New("time resolution must be positive")
)

// Config holds the construction parameters of an Index. They are immutable
// once the Index exists.
type Config struct {
	Capacity        int           // number of retained slices
	SpaceResolution float64       // leaf edge length of every slice
	TimeResolution  time.Duration // gap between consecutive slices
}

// Validate reports the first invalid parameter.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, c.Capacity)
	}
	if c.SpaceResolution <= 0 || math.IsNaN(c.SpaceResolution) || math.IsInf(c.SpaceResolution, 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidSpaceResolution, c.SpaceResolution)
	}
	if c.TimeResolution <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidTimeResolution, c.TimeResolution)
	}
	return nil
}

// Option configures an Index.
type Option func(*options)

type options struct {
	logger *slog.Logger
	start  time.Time
}

// WithLogger sets the logger used for advance and stepper messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithStartTime stamps the first slice with t instead of the current time.
func WithStartTime(t time.Time) Option {
	return func(o *options) {
		o.start = t
	}
}

// Index is the sliding window of slices plus the queries that span it.
type Index[E comparable] struct {
	spaceRes float64
	timeRes  time.Duration
	log      *slog.Logger
	metrics  *instruments

	// mu guards the window, every slice in it and the counters below
	mu        sync.Mutex
	window    *window[E]
	advances  uint64
	evictions uint64

	// stepMu guards only the stepper state
	stepMu   sync.Mutex
	autoStep bool
	stepper  *stepper
}

// New creates an Index holding a single empty slice stamped with the start time.
func New[E comparable](cfg Config, opts ...Option) (*Index[E], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.start.IsZero() {
		o.start = time.Now()
	}

	ix := &Index[E]{
		spaceRes: cfg.SpaceResolution,
		timeRes:  cfg.TimeResolution,
		log:      o.logger.With("component", "timemap"),
		// strip the monotonic reading so Equal behaves the same for
		// timestamps handed back by callers
		window: newWindow[E](cfg.Capacity, o.start.Round(0), cfg.SpaceResolution),
	}

	m, err := newInstruments(ix.observe)
	if err != nil {
		return nil, err
	}
	ix.metrics = m

	return ix, nil
}

// SpaceResolution returns the leaf edge length of every slice.
func (ix *Index[E]) SpaceResolution() float64 {
	return ix.spaceRes
}

// TimeResolution returns the gap between consecutive slices.
func (ix *Index[E]) TimeResolution() time.Duration {
	return ix.timeRes
}

// Capacity returns the maximum number of retained slices.
func (ix *Index[E]) Capacity() int {
	return ix.window.capacity()
}

// Close stops the stepper and releases metric callbacks. The Index stays
// usable for manual operation afterwards.
func (ix *Index[E]) Close() error {
	ix.SetAutoStep(false)
	return ix.metrics.close()
}
