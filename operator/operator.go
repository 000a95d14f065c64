// Package operator defines the interface to the operator bus, the external
// broker that delivers tasks to this consumer and receives per-invocation
// acknowledgments back. Implementations own the wire transport and
// authentication; the consumer runtime only consumes this interface.
package operator

import (
	"context"
	"time"

	"github.com/A13xB0/GoOperator/types"
)

// AckKind represents the acknowledgment action sent back to the bus for
// one delivery.
type AckKind int

const (
	// ACK acknowledges successful completion, carrying the service data.
	ACK AckKind = iota

	// RETRY asks the bus to redeliver this task's current step after the
	// given delay.
	RETRY

	// FAIL fails this service step. Whether the overall task fails is the
	// bus's fail-over decision.
	FAIL
)

// Delivery is one task handed to the consumer by the bus.
type Delivery struct {
	// UUID uniquely identifies this delivery instance.
	UUID string

	// Task is the unit of work, including the accumulated result sequence
	// and the identity of the service step being invoked.
	Task types.Task
}

// Acknowledgment is the per-delivery outcome reported back to the bus.
// Exactly one is sent for every delivery the consumer admits.
type Acknowledgment struct {
	// DeliveryUUID references the delivery being acknowledged.
	DeliveryUUID string

	// Kind selects the acknowledgment action.
	Kind AckKind

	// Data carries the service result for ACK.
	Data types.Payload

	// Delay carries the redelivery delay for RETRY.
	Delay time.Duration

	// Reason carries the failure reason for FAIL.
	Reason string
}

// Operator defines the interface that all bus transports must implement.
type Operator interface {
	// Receiver sets up the channel for tasks delivered by the bus to the
	// consumer. Returns an error if the receiver channel cannot be
	// established.
	Receiver(chan Delivery) error

	// Acknowledge reports the outcome of one delivery back to the bus.
	Acknowledge(ack Acknowledgment) error

	// Start begins the transport's delivery operations. It runs until the
	// provided context is cancelled; after that no further deliveries are
	// pushed to the receiver channel.
	Start(ctx context.Context)

	// Close tears down the bus connection.
	Close() error
}
