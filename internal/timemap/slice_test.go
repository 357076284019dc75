package timemap

import (
	"testing"

	"github.com/OCAP2/spacetime/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlice_InsertRemove(t *testing.T) {
	s := newSlice[int](t0, 1)
	s.Insert(core.Position3D{X: 1}, 7)
	s.Insert(core.Position3D{X: 2}, 7)
	s.Insert(core.Position3D{X: 3}, 8)

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(7))

	s.Remove(7)
	assert.False(t, s.Contains(7))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 8, s.At(core.Position3D{X: 3}))

	// zero entity is ignored
	s.Remove(0)
	assert.Equal(t, 1, s.Len())
}

func TestSlice_ClearAt(t *testing.T) {
	s := newSlice[string](t0, 1)
	s.Insert(core.Position3D{}, "A")

	s.ClearAt(core.Position3D{})
	s.ClearAt(core.Position3D{X: 5})

	assert.Equal(t, "", s.At(core.Position3D{}))
	assert.Equal(t, 0, s.Len())
}

func TestSlice_First(t *testing.T) {
	s := newSlice[string](t0, 1)
	s.Insert(core.Position3D{X: 2, Y: -1}, "A")
	s.Insert(core.Position3D{X: 2, Y: -3}, "A")
	s.Insert(core.Position3D{X: 5}, "A")

	p, ok := s.first("A")
	require.True(t, ok)
	assert.Equal(t, core.Position3D{X: 2, Y: -3}, p)

	_, ok = s.first("B")
	assert.False(t, ok)
	_, ok = s.first("")
	assert.False(t, ok)
}

func TestSlice_Reset(t *testing.T) {
	s := newSlice[string](t0, 1)
	s.Insert(core.Position3D{}, "A")

	later := t0.Add(3600e9)
	s.reset(later)

	assert.True(t, s.Time().Equal(later))
	assert.Equal(t, 0, s.Len())
}

func TestWindow_Ring(t *testing.T) {
	w := newWindow[string](3, t0, 1)
	assert.Equal(t, 1, w.len())
	assert.Same(t, w.oldest(), w.current())

	var evicted []bool
	for i := 0; i < 4; i++ {
		evicted = append(evicted, w.advance(1e9))
	}
	assert.Equal(t, []bool{false, false, true, true}, evicted)
	assert.Equal(t, 3, w.len())
	assert.True(t, w.oldest().Time().Equal(t0.Add(2e9)))
	assert.True(t, w.current().Time().Equal(t0.Add(4e9)))
	assert.Nil(t, w.find(t0.Add(1e9)))
	assert.NotNil(t, w.find(t0.Add(3e9)))

	var backward []int64
	w.eachBackward(func(s *Slice[string]) bool {
		backward = append(backward, s.Time().Sub(t0).Nanoseconds()/1e9)
		return true
	})
	assert.Equal(t, []int64{4, 3, 2}, backward)
}
