package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// SliceClock reports the timestamp of the slice a record belongs to.
// *timemap.Index satisfies it.
type SliceClock interface {
	CurrentTime() time.Time
}

// sessionStamp is shared by a SessionHandler and every handler derived from
// it, so a clock attached later reaches loggers built earlier.
type sessionStamp struct {
	session string
	clock   atomic.Pointer[SliceClock]
}

func (st *sessionStamp) attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 2)
	if st.session != "" {
		attrs = append(attrs, slog.String("session", st.session))
	}
	if c := st.clock.Load(); c != nil {
		if ts := (*c).CurrentTime(); !ts.IsZero() {
			attrs = append(attrs, slog.Time("slice", ts))
		}
	}
	return attrs
}

// SessionHandler stamps every record with the session id and, once a clock
// is attached, the current slice time. The clock is read at log time, so
// records must not be emitted while the clock's own lock is held.
type SessionHandler struct {
	inner slog.Handler
	stamp *sessionStamp
}

// NewSessionHandler wraps inner with session stamping.
func NewSessionHandler(inner slog.Handler, session string) *SessionHandler {
	return &SessionHandler{
		inner: inner,
		stamp: &sessionStamp{session: session},
	}
}

// AttachClock starts stamping records with clock's current slice time. A nil
// clock stops it.
func (h *SessionHandler) AttachClock(clock SliceClock) {
	if clock == nil {
		h.stamp.clock.Store(nil)
		return
	}
	h.stamp.clock.Store(&clock)
}

// Enabled delegates to the inner handler.
func (h *SessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds the session attributes and delegates to the inner handler.
func (h *SessionHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(h.stamp.attrs()...)
	return h.inner.Handle(ctx, r)
}

func (h *SessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SessionHandler{inner: h.inner.WithAttrs(attrs), stamp: h.stamp}
}

func (h *SessionHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SessionHandler{inner: h.inner.WithGroup(name), stamp: h.stamp}
}
