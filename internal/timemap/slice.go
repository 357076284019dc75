package timemap

import (
	"slices"
	"time"

	"github.com/OCAP2/spacetime/internal/voxel"
	"github.com/OCAP2/spacetime/pkg/core"
)

// Slice is the occupancy map of one time instant. A cell holds at most one
// entity; an entity may occupy any number of cells.
type Slice[E comparable] struct {
	t    time.Time
	tree *voxel.Tree[E]
}

func newSlice[E comparable](t time.Time, resolution float64) *Slice[E] {
	return &Slice[E]{
		t:    t,
		tree: voxel.New[E](resolution),
	}
}

// Time returns the timestamp of the slice.
func (s *Slice[E]) Time() time.Time {
	return s.t
}

// Len returns the number of occupied cells.
func (s *Slice[E]) Len() int {
	return s.tree.Len()
}

// Insert writes e into the cell at p, replacing any previous occupant.
// Inserting the zero value empties the cell.
func (s *Slice[E]) Insert(p core.Position3D, e E) {
	var zero E
	if e == zero {
		s.tree.Delete(p)
		return
	}
	s.tree.Update(p, true)
	s.tree.SetData(p, e)
}

// Remove deletes every cell occupied by e.
func (s *Slice[E]) Remove(e E) {
	var zero E
	if e == zero {
		return
	}

	var cells []core.Position3D
	s.tree.Traverse(func(p core.Position3D, l voxel.Leaf[E]) bool {
		if l.Data == e {
			cells = append(cells, p)
		}
		return true
	})
	for _, p := range cells {
		s.tree.Delete(p)
	}
}

// ClearAt empties the cell at p whatever it holds.
func (s *Slice[E]) ClearAt(p core.Position3D) {
	s.tree.Delete(p)
}

// At returns the occupant of the cell at p, or the zero value.
func (s *Slice[E]) At(p core.Position3D) E {
	l, ok := s.tree.Search(p)
	if !ok || !l.Occupied {
		var zero E
		return zero
	}
	return l.Data
}

// LocationsOf returns every cell occupied by e, ordered by position.
func (s *Slice[E]) LocationsOf(e E) []core.Position3D {
	var zero E
	if e == zero {
		return nil
	}

	var out []core.Position3D
	s.tree.Traverse(func(p core.Position3D, l voxel.Leaf[E]) bool {
		if l.Occupied && l.Data == e {
			out = append(out, p)
		}
		return true
	})
	slices.SortFunc(out, comparePositions)
	return out
}

// Contains reports whether e occupies at least one cell.
func (s *Slice[E]) Contains(e E) bool {
	var zero E
	if e == zero {
		return false
	}

	found := false
	s.tree.Traverse(func(_ core.Position3D, l voxel.Leaf[E]) bool {
		found = l.Occupied && l.Data == e
		return !found
	})
	return found
}

// first returns the smallest cell occupied by e.
func (s *Slice[E]) first(e E) (core.Position3D, bool) {
	var zero E
	if e == zero {
		return core.Position3D{}, false
	}

	var best core.Position3D
	found := false
	s.tree.Traverse(func(p core.Position3D, l voxel.Leaf[E]) bool {
		if l.Occupied && l.Data == e && (!found || p.Less(best)) {
			best, found = p, true
		}
		return true
	})
	return best, found
}

// reset reuses the slice for a new instant.
func (s *Slice[E]) reset(t time.Time) {
	s.t = t
	s.tree.Clear()
}

func comparePositions(a, b core.Position3D) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
