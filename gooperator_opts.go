// Package GoOperator provides configuration options for the subscription
// lifecycle.
package GoOperator

import (
	"context"

	"github.com/A13xB0/GoOperator/operator"
)

// subscribeOptsFunc is a function type that modifies subscribeOpts.
// It's used to implement the functional options pattern for subscriptions.
type subscribeOptsFunc func(*subscribeOpts)

// subscribeOpts holds configuration options for a subscription.
type subscribeOpts struct {
	ctx      context.Context   // Context for cancellation and value propagation
	operator operator.Operator // Bus transport, nil means dial redis from the config URL
}

// defaultOpts returns a subscribeOpts with default values.
func defaultOpts() subscribeOpts {
	return subscribeOpts{
		ctx: context.Background(),
	}
}

// WithContext returns a subscribeOptsFunc that sets a custom context for
// the subscription. Cancelling it stops intake the same way Unsubscribe
// does, without tearing down the connection.
func WithContext(ctx context.Context) subscribeOptsFunc {
	return func(opts *subscribeOpts) {
		opts.ctx = ctx
	}
}

// WithOperator returns a subscribeOptsFunc that attaches the subscription
// to a custom bus transport instead of dialing redis from the config URL.
func WithOperator(op operator.Operator) subscribeOptsFunc {
	return func(opts *subscribeOpts) {
		opts.operator = op
	}
}
