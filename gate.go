package GoOperator

import (
	"context"
	"sync/atomic"

	opererrors "github.com/A13xB0/GoOperator/errors"
)

// gate enforces the prefetch bound: at most capacity tasks are processed
// concurrently per subscription. Acquisition suspends the intake path when
// saturated, so a transport that over-delivers queues behind the gate
// rather than exceeding the bound.
type gate struct {
	capacity int
	tokens   chan struct{}
	inFlight atomic.Int64
}

func newGate(capacity int) *gate {
	g := &gate{
		capacity: capacity,
		tokens:   make(chan struct{}, capacity),
	}
	for i := 0; i < capacity; i++ {
		g.tokens <- struct{}{}
	}
	return g
}

// acquire suspends until a slot is free or ctx is done. The in-flight
// count is asserted against capacity on every admission; exceeding it
// means the accounting was corrupted and is surfaced as
// ErrorTooManyInFlight rather than tolerated.
func (g *gate) acquire(ctx context.Context) (*slot, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.tokens:
	}
	if n := g.inFlight.Add(1); n > int64(g.capacity) {
		g.inFlight.Add(-1)
		g.tokens <- struct{}{}
		return nil, opererrors.ErrorTooManyInFlight
	}
	return &slot{gate: g}, nil
}

// slot is a strict one-shot admission token. Releasing twice is a
// programming error surfaced immediately as ErrorSlotReleasedTwice; the
// second release never touches capacity.
type slot struct {
	gate     *gate
	released atomic.Bool
}

func (s *slot) release() error {
	if !s.released.CompareAndSwap(false, true) {
		return opererrors.ErrorSlotReleasedTwice
	}
	s.gate.inFlight.Add(-1)
	s.gate.tokens <- struct{}{}
	return nil
}
