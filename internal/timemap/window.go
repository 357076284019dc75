package timemap

import "time"

// window is a fixed arena of slices used as a ring. Sequence numbers grow
// forever; slice seq lives in slot seq % len(slots). Appending past capacity
// reuses the oldest slot, which is how eviction happens.
type window[E comparable] struct {
	slots []*Slice[E]
	next  uint64 // sequence number of the next slice to append
}

func newWindow[E comparable](capacity int, start time.Time, resolution float64) *window[E] {
	w := &window[E]{
		slots: make([]*Slice[E], capacity),
	}
	for i := range w.slots {
		w.slots[i] = newSlice[E](time.Time{}, resolution)
	}
	w.push(start)
	return w
}

func (w *window[E]) capacity() int {
	return len(w.slots)
}

// len returns the number of retained slices.
func (w *window[E]) len() int {
	return int(min(w.next, uint64(len(w.slots))))
}

func (w *window[E]) slot(seq uint64) *Slice[E] {
	return w.slots[seq%uint64(len(w.slots))]
}

// push appends a slice stamped t and reports whether the oldest one was evicted.
func (w *window[E]) push(t time.Time) bool {
	evicted := w.len() == len(w.slots)
	w.slot(w.next).reset(t)
	w.next++
	return evicted
}

// advance appends the slice one step after the current one.
func (w *window[E]) advance(step time.Duration) bool {
	return w.push(w.current().Time().Add(step))
}

func (w *window[E]) current() *Slice[E] {
	return w.slot(w.next - 1)
}

func (w *window[E]) oldest() *Slice[E] {
	return w.slot(w.next - uint64(w.len()))
}

// find returns the retained slice stamped exactly t, or nil.
func (w *window[E]) find(t time.Time) *Slice[E] {
	var found *Slice[E]
	w.each(func(s *Slice[E]) bool {
		if s.Time().Equal(t) {
			found = s
			return false
		}
		return true
	})
	return found
}

// each visits retained slices oldest first until fn returns false.
func (w *window[E]) each(fn func(*Slice[E]) bool) {
	for seq := w.next - uint64(w.len()); seq < w.next; seq++ {
		if !fn(w.slot(seq)) {
			return
		}
	}
}

// eachBackward visits retained slices newest first until fn returns false.
func (w *window[E]) eachBackward(fn func(*Slice[E]) bool) {
	first := w.next - uint64(w.len())
	for seq := w.next; seq > first; seq-- {
		if !fn(w.slot(seq - 1)) {
			return
		}
	}
}
