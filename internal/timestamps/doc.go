// Package timestamps converts attachment creation times stored relative to
// 2001-01-01 00:00:00 into calendar times and file-name stamps.
//
// Message stores have used both seconds and nanoseconds for this offset over
// the years. Callers pick the unit explicitly, or use Auto, which treats any
// magnitude of 1e11 or more as nanoseconds: no plausible second count since
// 2001 reaches that value, while every nanosecond count after early 2001 does.
//
// Arithmetic is naive: the epoch is anchored in UTC and results are never
// shifted into the local zone.
package timestamps
