package valueobject

import (
	"errors"
	"time"
)

// TimeRange is an immutable start/end pair (Value Object).
type TimeRange struct {
	start time.Time
	end   time.Time
}

// NewTimeRange creates a validated TimeRange.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.After(end) {
		return TimeRange{}, errors.New("start time must be before end time")
	}

	if start.IsZero() || end.IsZero() {
		return TimeRange{}, errors.New("start and end times cannot be zero")
	}

	return TimeRange{start: start, end: end}, nil
}

// NewTimeRangeFromDuration creates a TimeRange from duration ago until now.
func NewTimeRangeFromDuration(duration time.Duration) (TimeRange, error) {
	if duration <= 0 {
		return TimeRange{}, errors.New("duration must be positive")
	}

	now := time.Now()
	return TimeRange{start: now.Add(-duration), end: now}, nil
}

func (tr TimeRange) Start() time.Time {
	return tr.start
}

func (tr TimeRange) End() time.Time {
	return tr.end
}

func (tr TimeRange) Duration() time.Duration {
	return tr.end.Sub(tr.start)
}

// Contains reports whether t falls inside the range, bounds inclusive.
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.start) && !t.After(tr.end)
}
