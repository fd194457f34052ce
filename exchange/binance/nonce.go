package binance

import (
	"sync/atomic"
	"time"

	"github.com/lukehollenback/binanceapi/constants"
)

//
// NonceGenerator produces the nonce attached to private requests.
//
type NonceGenerator interface {
	Next() int64
}

//
// clockMicros reads the clock at millisecond resolution and scales it to microseconds.
//
func clockMicros(now func() time.Time) int64 {
	return now().UnixNano() / int64(time.Millisecond) * constants.MicrosPerMilli
}

//
// ClockNonce derives every nonce purely from the wall clock. Two requests built within the same
// millisecond receive the same nonce, and a clock step backwards yields a lower one.
//
type ClockNonce struct {
	now func() time.Time
}

func NewClockNonce(now func() time.Time) *ClockNonce {
	if now == nil {
		now = time.Now
	}

	return &ClockNonce{now: now}
}

func (o *ClockNonce) Next() int64 {
	return clockMicros(o.now)
}

//
// MonotonicNonce derives nonces from the wall clock but never hands out a value lower than or equal
// to the previous one, even when many goroutines ask within the same clock tick or the clock steps
// backwards. It is safe for concurrent use.
//
type MonotonicNonce struct {
	now  func() time.Time
	last int64
}

func NewMonotonicNonce(now func() time.Time) *MonotonicNonce {
	if now == nil {
		now = time.Now
	}

	return &MonotonicNonce{now: now}
}

func (o *MonotonicNonce) Next() int64 {
	for {
		last := atomic.LoadInt64(&o.last)

		next := clockMicros(o.now)
		if next <= last {
			next = last + 1
		}

		if atomic.CompareAndSwapInt64(&o.last, last, next) {
			return next
		}
	}
}
