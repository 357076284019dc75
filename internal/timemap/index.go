package timemap

import (
	"time"

	"github.com/OCAP2/spacetime/pkg/core"
)

// Stats is a point-in-time summary of the window.
type Stats struct {
	Capacity       int
	Retained       int
	OccupiedCells  int
	Oldest         time.Time
	Current        time.Time
	Advances       uint64
	Evictions      uint64
	AutoStep       bool
	SliceOccupancy []int // occupied cells per slice, oldest first
}

// Advance appends a new empty slice one time resolution after the current
// one, evicting the oldest slice when the window is full. It returns the
// timestamp of the new current slice.
func (ix *Index[E]) Advance() time.Time {
	ix.mu.Lock()
	evicted := ix.window.advance(ix.timeRes)
	now := ix.window.current().Time()
	ix.advances++
	if evicted {
		ix.evictions++
	}
	ix.mu.Unlock()

	ix.metrics.advanced(evicted)
	ix.log.Debug("advanced time slice", "time", now, "evicted", evicted)
	return now
}

// CurrentTime returns the timestamp of the newest slice.
func (ix *Index[E]) CurrentTime() time.Time {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.window.current().Time()
}

// Times returns the timestamps of every retained slice, oldest first.
func (ix *Index[E]) Times() []time.Time {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	out := make([]time.Time, 0, ix.window.len())
	ix.window.each(func(s *Slice[E]) bool {
		out = append(out, s.Time())
		return true
	})
	return out
}

// InsertAtom places e at p in the current slice, replacing any occupant of
// that cell.
func (ix *Index[E]) InsertAtom(p core.Position3D, e E) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.window.current().Insert(p, e)
}

// RemoveAtomsAtLocation empties the cell at p in the current slice. Older
// slices keep their observations.
func (ix *Index[E]) RemoveAtomsAtLocation(p core.Position3D) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.window.current().ClearAt(p)
}

// RemoveAtTimeByLocation empties the cell at p in the slice stamped t. It is
// a no-op when no such slice is retained.
func (ix *Index[E]) RemoveAtTimeByLocation(t time.Time, p core.Position3D) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if s := ix.window.find(t); s != nil {
		s.ClearAt(p)
	}
}

// RemoveAtom removes every occurrence of e from every retained slice.
func (ix *Index[E]) RemoveAtom(e E) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.window.each(func(s *Slice[E]) bool {
		s.Remove(e)
		return true
	})
}

// RemoveAtomAtCurrentTime removes every occurrence of e from the current slice.
func (ix *Index[E]) RemoveAtomAtCurrentTime(e E) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.window.current().Remove(e)
}

// RemoveAtomAtTime removes every occurrence of e from the slice stamped t.
func (ix *Index[E]) RemoveAtomAtTime(t time.Time, e E) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if s := ix.window.find(t); s != nil {
		s.Remove(e)
	}
}

// AtomAtLocation returns the occupant of p in the current slice, or the zero value.
func (ix *Index[E]) AtomAtLocation(p core.Position3D) E {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.window.current().At(p)
}

// AtomAtTimeByLocation returns the occupant of p in the slice stamped t. The
// boolean is false when no such slice is retained.
func (ix *Index[E]) AtomAtTimeByLocation(t time.Time, p core.Position3D) (E, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	s := ix.window.find(t)
	if s == nil {
		var zero E
		return zero, false
	}
	return s.At(p), true
}

// LocationsOfAtom returns the cells occupied by e in the current slice.
func (ix *Index[E]) LocationsOfAtom(e E) []core.Position3D {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.window.current().LocationsOf(e)
}

// LocationsOfAtomAtTime returns the cells occupied by e in the slice stamped
// t, or nil when no such slice is retained.
func (ix *Index[E]) LocationsOfAtomAtTime(t time.Time, e E) []core.Position3D {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if s := ix.window.find(t); s != nil {
		return s.LocationsOf(e)
	}
	return nil
}

// Stats summarises the window.
func (ix *Index[E]) Stats() Stats {
	ix.mu.Lock()
	st := Stats{
		Capacity:       ix.window.capacity(),
		Retained:       ix.window.len(),
		Oldest:         ix.window.oldest().Time(),
		Current:        ix.window.current().Time(),
		Advances:       ix.advances,
		Evictions:      ix.evictions,
		SliceOccupancy: make([]int, 0, ix.window.len()),
	}
	ix.window.each(func(s *Slice[E]) bool {
		n := s.Len()
		st.OccupiedCells += n
		st.SliceOccupancy = append(st.SliceOccupancy, n)
		return true
	})
	ix.mu.Unlock()

	st.AutoStep = ix.IsAutoStepOn()
	return st
}

// observe reports retained slices and occupied cells for the metric gauges.
func (ix *Index[E]) observe() (retained, occupied int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.window.each(func(s *Slice[E]) bool {
		retained++
		occupied += int64(s.Len())
		return true
	})
	return retained, occupied
}
