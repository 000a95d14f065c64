// Package service provides the per-invocation execution context handed to
// handler code. The context exposes read-only accessors over the task's
// accumulated state and the retry/abort control operations that short-
// circuit the current invocation.
package service

import (
	"fmt"
	"time"

	"github.com/A13xB0/GoOperator/types"
)

// minRetryDelay is the smallest enforced redelivery delay. Positive delays
// below it are raised to it; zero means no enforced delay.
const minRetryDelay = 100 * time.Millisecond

// Handler processes one task invocation. It returns the service data to
// acknowledge on success, or an error which the runtime reports to the bus
// as a step failure. Retry and Abort on the context preempt the return
// value entirely.
type Handler func(ctx *Context) (types.Payload, error)

// Context is the read-only view of one task invocation. It is created
// fresh per handler invocation and never shared across invocations.
type Context struct {
	task types.Task
}

// NewContext builds the execution context for one delivery. It returns an
// error if the delivery does not identify the service being invoked.
func NewContext(task types.Task) (*Context, error) {
	if task.Service.Name == "" {
		return nil, fmt.Errorf("delivery has no service identity")
	}
	return &Context{task: task}, nil
}

// GetInput returns the task's opaque input payload.
func (c *Context) GetInput() types.Payload {
	return c.task.Input
}

// GetMeta returns the task's service-agnostic annotations.
func (c *Context) GetMeta() types.Payload {
	return c.task.Meta
}

// GetConfiguration returns the configuration of the currently executing
// service, nil if none was supplied.
func (c *Context) GetConfiguration() types.Payload {
	return c.task.Service.Configuration
}

// GetTenantName returns the name of the tenant the task belongs to.
func (c *Context) GetTenantName() string {
	return c.task.TenantName
}

// GetServiceMeta returns the result envelope, without data or error, of
// the first entry matching id. If the service has not yet executed, the
// returned envelope has a nil ExecutedAt.
func (c *Context) GetServiceMeta(id types.ServiceIdentifier) types.ServiceResult {
	if r, ok := c.task.FirstResult(id); ok {
		return r.Meta()
	}
	return types.ServiceResult{Name: string(id)}
}

// GetServiceData returns the data of the first entry matching id, nil if
// the service never executed or executed without data.
func (c *Context) GetServiceData(id types.ServiceIdentifier) types.Payload {
	if r, ok := c.task.FirstResult(id); ok {
		return r.Data
	}
	return nil
}

// GetServiceError returns the error outcome of the first entry matching
// id, nil if the service never executed or executed without an error.
func (c *Context) GetServiceError(id types.ServiceIdentifier) types.Payload {
	if r, ok := c.task.FirstResult(id); ok {
		return r.Error
	}
	return nil
}

// GetLastServiceData returns the data of the last entry in sequence order
// matching id.
func (c *Context) GetLastServiceData(id types.ServiceIdentifier) types.Payload {
	if r, ok := c.task.LastResult(id); ok {
		return r.Data
	}
	return nil
}

// GetLastServiceError returns the error outcome of the last entry in
// sequence order matching id.
func (c *Context) GetLastServiceError(id types.ServiceIdentifier) types.Payload {
	if r, ok := c.task.LastResult(id); ok {
		return r.Error
	}
	return nil
}

// GetResults returns the full ordered result sequence.
func (c *Context) GetResults() []types.ServiceResult {
	results := make([]types.ServiceResult, len(c.task.Results))
	copy(results, c.task.Results)
	return results
}

// Retry signals the bus to redeliver this task's current service step
// after the given delay and preempts the rest of the invocation: no
// handler code after the call executes. A zero or negative delay means
// redelivery with no enforced delay; positive delays below 100ms are
// raised to 100ms. The runtime does not limit how often a task is
// retried.
func (c *Context) Retry(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	if delay > 0 && delay < minRetryDelay {
		delay = minRetryDelay
	}
	panic(types.RetryAfter(delay))
}

// Abort signals the bus to fail this service step immediately and preempts
// the rest of the invocation. Whether the overall task fails is decided by
// the bus based on its fail-over configuration.
func (c *Context) Abort(reason string) {
	panic(types.Abort(reason))
}

// Invoke runs the handler against the context and collapses every way the
// invocation can end into a single outcome: a normal return, a returned
// error, a retry or abort signal, or an uncaught panic. Control signals
// raised by Retry and Abort never escape this boundary.
func Invoke(c *Context, h Handler) (out types.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			if signal, ok := r.(types.Outcome); ok {
				out = signal
				return
			}
			out = types.Fault(fmt.Errorf("handler panic: %v", r))
		}
	}()

	data, err := h(c)
	if err != nil {
		return types.Fault(err)
	}
	return types.Complete(data)
}
