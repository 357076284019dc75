package timemap

import (
	"time"

	"github.com/OCAP2/spacetime/pkg/core"
)

// Timeline returns the timestamps of every retained slice in which e occurs,
// oldest first.
func (ix *Index[E]) Timeline(e E) []time.Time {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var out []time.Time
	ix.window.each(func(s *Slice[E]) bool {
		if s.Contains(e) {
			out = append(out, s.Time())
		}
		return true
	})
	return out
}

// OccurrencesAt returns the timestamps of every retained slice in which e
// occupies the cell at p, oldest first.
func (ix *Index[E]) OccurrencesAt(p core.Position3D, e E) []time.Time {
	var zero E
	if e == zero {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	var out []time.Time
	ix.window.each(func(s *Slice[E]) bool {
		if s.At(p) == e {
			out = append(out, s.Time())
		}
		return true
	})
	return out
}

// OldestAtOrAfter returns the earliest time not before from at which e occurs.
func (ix *Index[E]) OldestAtOrAfter(e E, from time.Time) (time.Time, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return sliceTime(ix.oldestAtOrAfter(e, from))
}

// LatestAtOrAfter returns the latest time at which e occurs, provided it is
// not before from.
func (ix *Index[E]) LatestAtOrAfter(e E, from time.Time) (time.Time, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return sliceTime(ix.latestAtOrAfter(e, from))
}

// LatestAtOrBefore returns the latest time not after till at which e occurs.
func (ix *Index[E]) LatestAtOrBefore(e E, till time.Time) (time.Time, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return sliceTime(ix.latestAtOrBefore(e, till))
}

// OldestLocations returns the cells of e at OldestAtOrAfter(e, from).
func (ix *Index[E]) OldestLocations(e E, from time.Time) []core.Position3D {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if s := ix.oldestAtOrAfter(e, from); s != nil {
		return s.LocationsOf(e)
	}
	return nil
}

// NewestLocations returns the cells of e at LatestAtOrAfter(e, till), that is
// the most recent observation of e no earlier than till.
func (ix *Index[E]) NewestLocations(e E, till time.Time) []core.Position3D {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if s := ix.latestAtOrAfter(e, till); s != nil {
		return s.LocationsOf(e)
	}
	return nil
}

// Slice timestamps strictly increase through the window, so the first match
// of a forward or backward walk is the extreme one.

func (ix *Index[E]) oldestAtOrAfter(e E, from time.Time) *Slice[E] {
	var found *Slice[E]
	ix.window.each(func(s *Slice[E]) bool {
		if !s.Time().Before(from) && s.Contains(e) {
			found = s
			return false
		}
		return true
	})
	return found
}

func (ix *Index[E]) latestAtOrAfter(e E, from time.Time) *Slice[E] {
	var found *Slice[E]
	ix.window.eachBackward(func(s *Slice[E]) bool {
		if s.Contains(e) {
			found = s
			return false
		}
		return true
	})
	if found == nil || found.Time().Before(from) {
		return nil
	}
	return found
}

func (ix *Index[E]) latestAtOrBefore(e E, till time.Time) *Slice[E] {
	var found *Slice[E]
	ix.window.eachBackward(func(s *Slice[E]) bool {
		if !s.Time().After(till) && s.Contains(e) {
			found = s
			return false
		}
		return true
	})
	return found
}

func sliceTime[E comparable](s *Slice[E]) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	return s.Time(), true
}
