// Package operator provides interfaces and implementations for bus
// transports.
package operator

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/A13xB0/GoOperator/types"
)

// StubOperator provides a basic in-memory implementation of the Operator
// interface. It's useful for testing and as a reference implementation.
type StubOperator struct {
	receiverChan chan Delivery
	acks         []Acknowledgment
	acksMutex    sync.RWMutex
	closed       bool
}

// NewStubOperator creates a new instance of StubOperator.
func NewStubOperator() *StubOperator {
	return &StubOperator{}
}

// Receiver implements the Operator interface by storing the channel
// deliveries are pushed into.
func (s *StubOperator) Receiver(ch chan Delivery) error {
	s.receiverChan = ch
	return nil
}

// Acknowledge implements the Operator interface by recording the
// acknowledgment for later inspection.
func (s *StubOperator) Acknowledge(ack Acknowledgment) error {
	s.acksMutex.Lock()
	defer s.acksMutex.Unlock()
	s.acks = append(s.acks, ack)
	return nil
}

// Start implements the Operator interface. In this stub implementation,
// it simply waits for context cancellation.
func (s *StubOperator) Start(ctx context.Context) {
	<-ctx.Done()
}

// Close implements the Operator interface.
func (s *StubOperator) Close() error {
	s.acksMutex.Lock()
	defer s.acksMutex.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called. This is useful for
// asserting teardown in tests.
func (s *StubOperator) Closed() bool {
	s.acksMutex.RLock()
	defer s.acksMutex.RUnlock()
	return s.closed
}

// SimulateDelivery simulates the bus delivering a task to the consumer.
// It blocks until the consumer admits the delivery, mirroring a transport
// that only hands over the next message once the consumer is ready.
func (s *StubOperator) SimulateDelivery(task types.Task) Delivery {
	d := Delivery{
		UUID: uuid.New().String(),
		Task: task,
	}
	if s.receiverChan != nil {
		s.receiverChan <- d
	}
	return d
}

// Acknowledgments returns a copy of all acknowledgments recorded so far.
func (s *StubOperator) Acknowledgments() []Acknowledgment {
	s.acksMutex.RLock()
	defer s.acksMutex.RUnlock()
	acks := make([]Acknowledgment, len(s.acks))
	copy(acks, s.acks)
	return acks
}

// AcknowledgmentFor returns the acknowledgment recorded for a delivery.
func (s *StubOperator) AcknowledgmentFor(d Delivery) (Acknowledgment, bool) {
	s.acksMutex.RLock()
	defer s.acksMutex.RUnlock()
	for _, ack := range s.acks {
		if ack.DeliveryUUID == d.UUID {
			return ack, true
		}
	}
	return Acknowledgment{}, false
}
