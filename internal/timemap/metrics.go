package timemap

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/spacetime/internal/timemap"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type instruments struct {
	advances  metric.Int64Counter
	evictions metric.Int64Counter
	reg       metric.Registration
}

// newInstruments creates the index counters and gauges on the global meter
// (no-op if not configured). observe is called on every collection.
func newInstruments(observe func() (retained, occupied int64)) (*instruments, error) {
	m := meter()
	in := &instruments{}

	var err error
	in.advances, err = m.Int64Counter(
		"timemap.advances",
		metric.WithDescription("Total time slices appended"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating advances counter: %w", err)
	}

	in.evictions, err = m.Int64Counter(
		"timemap.evictions",
		metric.WithDescription("Total time slices evicted from a full window"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evictions counter: %w", err)
	}

	retained, err := m.Int64ObservableGauge(
		"timemap.slices.retained",
		metric.WithDescription("Current number of retained time slices"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating retained gauge: %w", err)
	}

	occupied, err := m.Int64ObservableGauge(
		"timemap.cells.occupied",
		metric.WithDescription("Current number of occupied cells across all slices"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating occupied gauge: %w", err)
	}

	in.reg, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			r, c := observe()
			o.ObserveInt64(retained, r)
			o.ObserveInt64(occupied, c)
			return nil
		},
		retained, occupied,
	)
	if err != nil {
		return nil, fmt.Errorf("registering gauge callback: %w", err)
	}

	return in, nil
}

func (in *instruments) advanced(evicted bool) {
	ctx := context.Background()
	in.advances.Add(ctx, 1)
	if evicted {
		in.evictions.Add(ctx, 1)
	}
}

func (in *instruments) close() error {
	if in.reg == nil {
		return nil
	}
	reg := in.reg
	in.reg = nil
	return reg.Unregister()
}
