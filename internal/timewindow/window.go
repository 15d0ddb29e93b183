// Package timewindow parses ISO 8601 time specifications (a single date,
// a single datetime, or a start/end range of either granularity) and
// tests record timestamps against them.
package timewindow

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// bound is one side of a window: a wall-clock instant plus whether it
// was given at date-only granularity.
type bound struct {
	wall     time.Time // wall-clock fields only; location is irrelevant
	dateOnly bool
	set      bool
}

// Window is an inclusive time interval with independently optional
// bounds. The zero value accepts every timestamp. Date-only bounds
// cover their entire calendar day in the tested record's UTC offset.
type Window struct {
	start bound
	end   bound
}

// Parse builds a Window from a time specification string: "2018-01-01",
// "2018-01-01T12:30:00", or "start/end" combining either granularity.
// An empty string yields the unbounded window. A range whose start is
// after its end is a configuration error.
func Parse(spec string) (Window, error) {
	var w Window

	spec = strings.TrimSpace(spec)
	if spec == "" {
		return w, nil
	}

	parts := strings.Split(spec, "/")
	if len(parts) > 2 {
		return w, fmt.Errorf("time specification %q has more than two bounds", spec)
	}

	start, err := parseBound(parts[0])
	if err != nil {
		return w, err
	}

	// A single instant is its own start and end; a bare date then covers
	// the whole day through the end bound's day expansion.
	end := start
	if len(parts) == 2 {
		end, err = parseBound(parts[1])
		if err != nil {
			return w, err
		}
	}

	w.start = start
	w.end = end

	if w.start.set && w.end.set && w.startInstant(time.UTC).After(w.endInstant(time.UTC)) {
		return Window{}, fmt.Errorf("time specification %q: start is after end", spec)
	}
	return w, nil
}

// parseBound parses one side of a specification. ".." or an empty value
// leaves that side unbounded.
func parseBound(value string) (bound, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == ".." {
		return bound{}, nil
	}
	if strings.Contains(value, "T") {
		t, err := time.Parse(dateTimeLayout, value)
		if err != nil {
			return bound{}, fmt.Errorf("invalid datetime %q: %w", value, err)
		}
		return bound{wall: t, set: true}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return bound{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return bound{wall: t, dateOnly: true, set: true}, nil
}

// IsZero reports whether no time specification was configured.
func (w Window) IsZero() bool {
	return !w.start.set && !w.end.set
}

// Contains reports whether t falls inside the window, bounds inclusive.
// Bounds are materialized in t's own location, so a date-only bound
// spans that calendar day as seen in the record's reported offset.
func (w Window) Contains(t time.Time) bool {
	if w.start.set && t.Before(w.startInstant(t.Location())) {
		return false
	}
	if w.end.set && t.After(w.endInstant(t.Location())) {
		return false
	}
	return true
}

// startInstant places the start bound in loc. Date-only bounds start at
// midnight.
func (w Window) startInstant(loc *time.Location) time.Time {
	return materialize(w.start.wall, loc)
}

// endInstant places the end bound in loc. Date-only bounds extend to the
// last instant of their day.
func (w Window) endInstant(loc *time.Location) time.Time {
	t := materialize(w.end.wall, loc)
	if w.end.dateOnly {
		return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t
}

func materialize(wall time.Time, loc *time.Location) time.Time {
	y, m, d := wall.Date()
	hh, mm, ss := wall.Clock()
	return time.Date(y, m, d, hh, mm, ss, wall.Nanosecond(), loc)
}
