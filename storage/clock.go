package storage

import (
	"sync/atomic"
	"time"
)

var lastTimestamp int64

// nextTimestamp returns the current unix-millisecond time, bumped past the
// previously issued value so successive calls never repeat or go backwards.
// Rows stamped by consecutive mutations therefore always carry strictly
// increasing updated_at values, even within the same millisecond.
func nextTimestamp() int64 {
	for {
		now := time.Now().UnixMilli()
		last := atomic.LoadInt64(&lastTimestamp)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastTimestamp, last, now) {
			return now
		}
	}
}
