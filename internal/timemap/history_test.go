package timemap

import (
	"testing"
	"time"

	"github.com/OCAP2/spacetime/pkg/core"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// history builds four slices one second apart:
//
//	t0: A@1
//	t1: A@5
//	t2: B@9
//	t3: A@1 A@2
func history(t *testing.T) (*Index[string], [4]time.Time) {
	t.Helper()
	ix := newTestIndex(t, 5, 1)

	var ts [4]time.Time
	ts[0] = ix.CurrentTime()
	ix.InsertAtom(core.Position3D{X: 1}, "A")

	ts[1] = ix.Advance()
	ix.InsertAtom(core.Position3D{X: 5}, "A")

	ts[2] = ix.Advance()
	ix.InsertAtom(core.Position3D{X: 9}, "B")

	ts[3] = ix.Advance()
	ix.InsertAtom(core.Position3D{X: 1}, "A")
	ix.InsertAtom(core.Position3D{X: 2}, "A")

	return ix, ts
}

func TestTimeline(t *testing.T) {
	ix, ts := history(t)

	if diff := cmp.Diff([]time.Time{ts[0], ts[1], ts[3]}, ix.Timeline("A")); diff != "" {
		t.Errorf("Timeline(A) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Time{ts[2]}, ix.Timeline("B")); diff != "" {
		t.Errorf("Timeline(B) mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, ix.Timeline("C"))
}

func TestTimeline_NeverExceedsCapacity(t *testing.T) {
	ix := newTestIndex(t, 4, 1)
	for i := 0; i < 10; i++ {
		ix.InsertAtom(core.Position3D{X: float64(i)}, "A")
		ix.Advance()
	}
	ix.InsertAtom(core.Position3D{}, "A")

	assert.Len(t, ix.Timeline("A"), 4)
	if diff := cmp.Diff(ix.Times(), ix.Timeline("A")); diff != "" {
		t.Errorf("Timeline(A) should cover the window (-want +got):\n%s", diff)
	}
}

func TestOccurrencesAt(t *testing.T) {
	ix, ts := history(t)

	if diff := cmp.Diff([]time.Time{ts[0], ts[3]}, ix.OccurrencesAt(core.Position3D{X: 1}, "A")); diff != "" {
		t.Errorf("OccurrencesAt mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, ix.OccurrencesAt(core.Position3D{X: 1}, "B"))
	assert.Empty(t, ix.OccurrencesAt(core.Position3D{X: 42}, "A"))
}

func TestOldestAtOrAfter(t *testing.T) {
	ix, ts := history(t)

	tests := []struct {
		name   string
		entity string
		from   time.Time
		want   time.Time
		found  bool
	}{
		{"from first slice", "A", ts[0], ts[0], true},
		{"between slices", "A", ts[0].Add(500 * time.Millisecond), ts[1], true},
		{"skips absent slice", "A", ts[2], ts[3], true},
		{"after last sighting", "A", ts[3].Add(time.Second), time.Time{}, false},
		{"before window", "B", ts[0].Add(-time.Hour), ts[2], true},
		{"unknown entity", "C", ts[0], time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ix.OldestAtOrAfter(tt.entity, tt.from)
			assert.Equal(t, tt.found, ok)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestLatestAtOrAfter(t *testing.T) {
	ix, ts := history(t)

	tests := []struct {
		name   string
		entity string
		from   time.Time
		want   time.Time
		found  bool
	}{
		{"from first slice", "A", ts[0], ts[3], true},
		{"from latest sighting", "A", ts[3], ts[3], true},
		{"after latest sighting", "A", ts[3].Add(time.Second), time.Time{}, false},
		{"seen before from", "B", ts[3], time.Time{}, false},
		{"unknown entity", "C", ts[0], time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ix.LatestAtOrAfter(tt.entity, tt.from)
			assert.Equal(t, tt.found, ok)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestLatestAtOrBefore(t *testing.T) {
	ix, ts := history(t)

	tests := []struct {
		name   string
		entity string
		till   time.Time
		want   time.Time
		found  bool
	}{
		{"latest before gap", "A", ts[2], ts[1], true},
		{"exact match", "A", ts[1], ts[1], true},
		{"after window", "A", ts[3].Add(time.Minute), ts[3], true},
		{"before first sighting", "A", ts[0].Add(-time.Second), time.Time{}, false},
		{"first sighting postdates till", "B", ts[1], time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ix.LatestAtOrBefore(tt.entity, tt.till)
			assert.Equal(t, tt.found, ok)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestSingleObservation(t *testing.T) {
	ix, ts := history(t)

	oldest, ok := ix.OldestAtOrAfter("B", ts[2])
	require.True(t, ok)
	latest, ok := ix.LatestAtOrAfter("B", ts[2])
	require.True(t, ok)

	assert.True(t, oldest.Equal(ts[2]))
	assert.True(t, latest.Equal(ts[2]))
}

func TestOldestLocations(t *testing.T) {
	ix, ts := history(t)

	assert.Equal(t, []core.Position3D{{X: 1}, {X: 2}}, ix.OldestLocations("A", ts[2]))
	assert.Equal(t, []core.Position3D{{X: 1}}, ix.OldestLocations("A", ts[0]))
	assert.Empty(t, ix.OldestLocations("B", ts[3]))
}

func TestNewestLocations(t *testing.T) {
	ix, ts := history(t)

	assert.Equal(t, []core.Position3D{{X: 1}, {X: 2}}, ix.NewestLocations("A", ts[2]))
	assert.Equal(t, []core.Position3D{{X: 1}, {X: 2}}, ix.NewestLocations("A", ts[0]))
	assert.Equal(t, []core.Position3D{{X: 9}}, ix.NewestLocations("B", ts[1]))
	assert.Empty(t, ix.NewestLocations("B", ts[3]))
}
