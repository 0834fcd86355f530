package main

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// runEvery calls fn with the tick time every period until ctx is done. A tick
// missed while fn runs is dropped, the counters carry it into the next one.
func runEvery(ctx context.Context, clock clockwork.Clock, period time.Duration, fn func(time.Time)) {
	ticker := clock.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.Chan():
			fn(t)
		}
	}
}

// SumLastRange sums the <size> slots of data ending just before <start>,
// wrapping round the start of the slice.
func SumLastRange(start int, size int, data []uint32) uint32 {
	if len(data) == 0 {
		return 0
	}
	if size > len(data) {
		size = len(data)
	}
	var count uint32
	for i := 1; i <= size; i++ {
		index := (start - i) % len(data)
		if index < 0 {
			index += len(data)
		}
		count += data[index]
	}
	return count
}
