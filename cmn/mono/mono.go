//go:build !mono

// Package mono provides low-level monotonic time
package mono

import "time"

// NanoTime returns nanoseconds from an arbitrary but fixed point in time.
// The `mono` build tag switches to a faster runtime.nanotime linkname; this
// is the portable fallback used by default builds.
func NanoTime() int64 { return time.Now().UnixNano() }
