// Package GoOperator provides a bounded-concurrency consumer runtime for
// the operator task bus. It admits deliveries up to a prefetch limit,
// builds a read-only execution context over each task's accumulated
// service results, invokes the registered handler, and translates the
// handler's outcome into the acknowledgment sent back to the bus.
package GoOperator

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"

	opererrors "github.com/A13xB0/GoOperator/errors"
	"github.com/A13xB0/GoOperator/operator"
	"github.com/A13xB0/GoOperator/redis"
	"github.com/A13xB0/GoOperator/service"
	"github.com/A13xB0/GoOperator/types"
)

// Subscription represents one active attachment of a handler to the
// operator bus. It owns the bus connection, the admission gate bounding
// concurrent processing, and the per-delivery processing loop. A
// subscription is single-use: once unsubscribed, attach again with a
// fresh Subscribe call.
type Subscription struct {
	op           operator.Operator
	handler      service.Handler
	config       Config
	gate         *gate
	deliveries   chan operator.Delivery
	cancelIntake context.CancelFunc
	wg           sync.WaitGroup

	unsubscribed atomic.Bool
	fatalMutex   sync.Mutex
	fatal        error
}

// Subscribe connects to the operator bus and starts processing deliveries
// with the given handler, at most config.Prefetch concurrently. It returns
// once the subscription is active. By default the connection is dialed
// from config.URL using the redis transport; WithOperator injects any
// other transport, in which case config.URL may be empty.
func Subscribe(config Config, handler service.Handler, opts ...subscribeOptsFunc) (*Subscription, error) {

	//Get options
	o := defaultOpts()
	for _, fn := range opts {
		fn(&o)
	}

	if handler == nil {
		return nil, errors.Join(opererrors.ErrorCouldNotSubscribe, opererrors.ErrorNoHandlerProvided)
	}
	config, err := config.resolve(o.operator != nil)
	if err != nil {
		return nil, errors.Join(opererrors.ErrorCouldNotSubscribe, err)
	}

	op := o.operator
	if op == nil {
		rop, err := redis.New(o.ctx, redis.Config{URL: config.URL})
		if err != nil {
			return nil, errors.Join(opererrors.ErrorCouldNotSubscribe, err)
		}
		op = rop
	}

	intakeCtx, cancel := context.WithCancel(o.ctx)
	s := &Subscription{
		op:           op,
		handler:      handler,
		config:       config,
		gate:         newGate(config.Prefetch),
		deliveries:   make(chan operator.Delivery),
		cancelIntake: cancel,
	}
	if err := op.Receiver(s.deliveries); err != nil {
		cancel()
		return nil, errors.Join(opererrors.ErrorCouldNotSubscribe, err)
	}

	go op.Start(intakeCtx)
	s.wg.Add(1)
	go s.run(intakeCtx)
	return s, nil
}

// Config returns the resolved configuration the subscription runs with.
func (s *Subscription) Config() Config {
	return s.config
}

// Unsubscribe stops admitting new deliveries immediately, waits for every
// in-flight task to reach a terminal outcome and release its slot, then
// tears down the bus connection. If ctx is cancelled before the in-flight
// tasks drain, the ctx error is returned and the connection is left open.
// Calling Unsubscribe again returns ErrorAlreadyUnsubscribed.
func (s *Subscription) Unsubscribe(ctx context.Context) error {
	if !s.unsubscribed.CompareAndSwap(false, true) {
		return opererrors.ErrorAlreadyUnsubscribed
	}
	s.cancelIntake()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	closeErr := s.op.Close()
	if fatal := s.fatalErr(); fatal != nil {
		return errors.Join(fatal, closeErr)
	}
	return closeErr
}

// run is the intake loop. A slot is acquired before the next delivery is
// taken from the transport, so the bus is never asked for more than the
// prefetch bound allows.
func (s *Subscription) run(ctx context.Context) {
	defer s.wg.Done()
	for {
		sl, err := s.gate.acquire(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				s.recordFatal(err)
				s.cancelIntake()
			}
			return
		}
		select {
		case <-ctx.Done():
			s.releaseSlot(sl)
			return
		case d, ok := <-s.deliveries:
			// Both cases can be ready at once; a cancelled intake never
			// admits the delivery it raced with.
			if !ok || ctx.Err() != nil {
				s.releaseSlot(sl)
				return
			}
			s.wg.Add(1)
			go s.process(d, sl)
		}
	}
}

// process runs the lifecycle of one admitted delivery: build context,
// invoke the handler once, acknowledge the outcome, release the slot.
// The slot release is deferred so every path reaches it exactly once,
// including a context build failure.
func (s *Subscription) process(d operator.Delivery, sl *slot) {
	defer s.wg.Done()
	defer s.releaseSlot(sl)

	out := s.invoke(d)
	if err := s.op.Acknowledge(acknowledgment(d, out)); err != nil {
		log.Printf("gooperator: delivery %s: %v", d.UUID, errors.Join(opererrors.ErrorCouldNotAcknowledge, err))
	}
}

// invoke builds the execution context and runs the handler through the
// outcome boundary. A task that cannot produce a context is faulted, never
// silently dropped.
func (s *Subscription) invoke(d operator.Delivery) types.Outcome {
	c, err := service.NewContext(d.Task)
	if err != nil {
		return types.Fault(err)
	}
	return service.Invoke(c, s.handler)
}

func (s *Subscription) releaseSlot(sl *slot) {
	if err := sl.release(); err != nil {
		s.recordFatal(err)
		log.Printf("gooperator: %v", err)
	}
}

func (s *Subscription) recordFatal(err error) {
	s.fatalMutex.Lock()
	defer s.fatalMutex.Unlock()
	if s.fatal == nil {
		s.fatal = err
	}
}

func (s *Subscription) fatalErr() error {
	s.fatalMutex.Lock()
	defer s.fatalMutex.Unlock()
	return s.fatal
}

// acknowledgment maps a handler outcome to the acknowledgment action sent
// back to the bus. Aborts and faults both fail the step; the fault's
// message travels as the failure reason.
func acknowledgment(d operator.Delivery, out types.Outcome) operator.Acknowledgment {
	switch out.Kind() {
	case types.RETRIED:
		return operator.Acknowledgment{
			DeliveryUUID: d.UUID,
			Kind:         operator.RETRY,
			Delay:        out.Delay(),
		}
	case types.ABORTED, types.FAULTED:
		return operator.Acknowledgment{
			DeliveryUUID: d.UUID,
			Kind:         operator.FAIL,
			Reason:       out.Reason(),
		}
	default:
		return operator.Acknowledgment{
			DeliveryUUID: d.UUID,
			Kind:         operator.ACK,
			Data:         out.Data(),
		}
	}
}
