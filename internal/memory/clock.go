package memory

import (
	"sync/atomic"
	"time"
)

// scoreResolution is the number of sequence slots per millisecond.
const scoreResolution = 1000

// ScoreClock hands out strictly increasing history scores.
//
// A score is the wall-clock time in milliseconds scaled by scoreResolution
// plus a sequence number, so appends within the same millisecond stay
// ordered. Values remain exactly representable as float64 until the year
// 2255.
type ScoreClock struct {
	now  func() time.Time
	last atomic.Int64
}

// NewScoreClock creates a clock reading time.Now.
func NewScoreClock() *ScoreClock {
	return &ScoreClock{now: time.Now}
}

// Next returns a score greater than every score previously returned.
func (c *ScoreClock) Next() float64 {
	for {
		last := c.last.Load()
		next := c.now().UnixMilli() * scoreResolution
		if next <= last {
			next = last + 1
		}
		if c.last.CompareAndSwap(last, next) {
			return float64(next)
		}
	}
}
