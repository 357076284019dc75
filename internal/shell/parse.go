package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/OCAP2/spacetime/internal/geo"
	"github.com/OCAP2/spacetime/pkg/core"
)

// ErrUsage is returned when a command gets the wrong number of arguments.
var ErrUsage = errors.New("usage")

// ErrInvalidTime is returned for a time argument that is neither RFC 3339 nor
// integer Unix nanoseconds.
var ErrInvalidTime = errors.New("invalid time")

// parseTime accepts RFC 3339 (with optional fractional seconds), integer
// Unix nanoseconds, or "now" for the current slice.
func parseTime(s string, now func() time.Time) (time.Time, error) {
	if s == "now" {
		return now(), nil
	}
	if ns, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(0, ns).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimes(ts []time.Time) string {
	if len(ts) == 0 {
		return "none"
	}
	lines := make([]string, len(ts))
	for i, t := range ts {
		lines[i] = formatTime(t)
	}
	return strings.Join(lines, "\n")
}

func formatPositions(ps []core.Position3D) string {
	if len(ps) == 0 {
		return "none"
	}
	lines := make([]string, len(ps))
	for i, p := range ps {
		lines[i] = p.String()
	}
	return strings.Join(lines, "\n")
}

func parsePosition(s string) (core.Position3D, error) {
	return geo.ParsePosition(s)
}

// expect checks the argument count against the command's usage line.
func expect(args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	return nil
}
