package format

import "math"

// Timestamp is an epoch time in milliseconds resolved from a raw field.
type Timestamp float64

// Millis returns the raw millisecond value.
func (t Timestamp) Millis() float64 {
	return float64(t)
}

// Humanize renders the timestamp with FormatDateTime.
func (t Timestamp) Humanize() string {
	return FormatDateTime(float64(t))
}

// FromMicrosecondTimestamp interprets raw as microseconds since the epoch.
// Empty, zero or unparseable input falls back to Now.
func FromMicrosecondTimestamp(raw string) Timestamp {
	v, ok := nonZero(raw)
	if !ok {
		return Timestamp(Now())
	}
	return Timestamp(v / 1000)
}

// FromSecondsTimestamp interprets raw as seconds since the epoch. Empty,
// zero or unparseable input falls back to Now.
func FromSecondsTimestamp(raw string) Timestamp {
	v, ok := nonZero(raw)
	if !ok {
		return Timestamp(Now())
	}
	return Timestamp(v * 1000)
}

func nonZero(raw string) (float64, bool) {
	n := ParseNumber(raw)
	if n.Empty || n.Value == 0 || math.IsNaN(n.Value) {
		return 0, false
	}
	return n.Value, true
}
