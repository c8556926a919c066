package timestamps

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Epoch is the zero point of stored attachment timestamps.
var Epoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// StampLayout formats converted times for use in file names.
const StampLayout = "20060102_150405"

// autoThreshold separates second offsets from nanosecond offsets in Auto mode.
const autoThreshold = 1e11

// Unit identifies the resolution of a stored offset.
type Unit string

const (
	Seconds     Unit = "seconds"
	Nanoseconds Unit = "nanoseconds"
	Auto        Unit = "auto"
)

// ParseUnit maps a configuration value onto a Unit. An empty value selects Auto.
func ParseUnit(value string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return Auto, nil
	case "seconds", "second", "s":
		return Seconds, nil
	case "nanoseconds", "nanosecond", "ns":
		return Nanoseconds, nil
	default:
		return "", fmt.Errorf("unsupported timestamp unit %q (want seconds, nanoseconds, or auto)", value)
	}
}

// Resolve returns the concrete unit used for value. Seconds and Nanoseconds
// are returned unchanged.
func (u Unit) Resolve(value float64) Unit {
	if u != Auto {
		return u
	}
	if math.Abs(value) >= autoThreshold {
		return Nanoseconds
	}
	return Seconds
}

// Convert returns Epoch shifted by value, interpreted in unit. Offsets are
// split into whole seconds and nanoseconds so values beyond the range of
// time.Duration (about 292 years) still land on the right instant.
// Fractional seconds are kept to nanosecond precision.
func Convert(value float64, unit Unit) time.Time {
	if unit.Resolve(value) == Nanoseconds {
		secs := math.Floor(value / 1e9)
		return fromEpoch(secs, value-secs*1e9)
	}
	whole, frac := math.Modf(value)
	return fromEpoch(whole, frac*1e9)
}

func fromEpoch(secs, nanos float64) time.Time {
	return time.Unix(Epoch.Unix()+int64(secs), int64(nanos)).UTC()
}

// Format renders t as YYYYMMDD_HHMMSS in UTC.
func Format(t time.Time) string {
	return t.UTC().Format(StampLayout)
}

// Stamp converts value and formats it in one step.
func Stamp(value float64, unit Unit) string {
	return Format(Convert(value, unit))
}
