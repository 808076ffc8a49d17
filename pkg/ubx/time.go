// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import "time"

// GPS time constants
const (
	WeekMillis = 7 * 24 * 60 * 60 * 1000 // 604,800,000 ms
)

// GPSEpoch is the start of GPS time, 1980-01-06T00:00:00Z.
var GPSEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// Clock supplies the current wall-clock time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

// Now implements Clock
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock is the host wall clock
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock returns a clock that always reports t
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Timebase converts receiver time-of-week values into absolute timestamps.
//
// The GPS week is taken from the decoding host's clock, not from the
// receiver. Close to a week rollover (Saturday/Sunday midnight GPS time) a
// host whose clock is on the other side of the boundary than the receiver
// selects the neighbouring week, and timestamps are off by exactly one week.
// Leap seconds are ignored, so the result is GPS time expressed as UTC.
// Callers needing authoritative UTC should use NavPVTData.UTC.
type Timebase struct {
	Clock Clock
}

// NewTimebase creates a timebase using clock; nil selects SystemClock
func NewTimebase(clock Clock) Timebase {
	if clock == nil {
		clock = SystemClock
	}
	return Timebase{Clock: clock}
}

func (tb Timebase) now() time.Time {
	if tb.Clock == nil {
		return time.Now()
	}
	return tb.Clock.Now()
}

// Week returns the GPS week number of the clock's current time
func (tb Timebase) Week() int64 {
	return GPSWeek(tb.now())
}

// Timestamp converts an iTOW (ms) into an absolute time using the current week
func (tb Timebase) Timestamp(itow uint32) time.Time {
	return ITOWToTime(tb.Week(), itow)
}

// GPSWeek returns floor((t - GPSEpoch) / week)
func GPSWeek(t time.Time) int64 {
	ms := t.Sub(GPSEpoch).Milliseconds()
	week := ms / WeekMillis
	if ms < 0 && ms%WeekMillis != 0 {
		week--
	}
	return week
}

// ITOWToTime returns GPSEpoch + week*WeekMillis + itow, in UTC
func ITOWToTime(week int64, itow uint32) time.Time {
	ms := week*WeekMillis + int64(itow)
	return GPSEpoch.Add(time.Duration(ms) * time.Millisecond).UTC()
}

// ITOWDiff returns end-start in milliseconds, assuming at most one week
// rollover between the two values. Gaps of a week or more alias.
func ITOWDiff(start, end uint32) uint32 {
	if end < start {
		return end + WeekMillis - start
	}
	return end - start
}
