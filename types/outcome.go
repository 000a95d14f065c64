package types

import "time"

// OutcomeKind discriminates the variants of an Outcome.
type OutcomeKind int

const (
	// COMPLETED indicates the handler returned normally with a value.
	COMPLETED OutcomeKind = iota

	// RETRIED indicates the handler requested redelivery of this step.
	RETRIED

	// ABORTED indicates the handler failed this step deliberately.
	ABORTED

	// FAULTED indicates the handler failed with an uncaught error.
	FAULTED
)

// Outcome is the single result variant produced by one handler invocation.
// The normal return path and the retry/abort signal path both collapse into
// an Outcome, which the processing loop switches on to choose the
// acknowledgment sent back to the operator.
type Outcome struct {
	kind   OutcomeKind
	data   Payload
	delay  time.Duration
	reason string
	err    error
}

// Complete builds the outcome for a handler that returned data normally.
func Complete(data Payload) Outcome {
	return Outcome{
		kind: COMPLETED,
		data: data,
	}
}

// RetryAfter builds the outcome for a retry signal. The delay is reported
// as supplied; clamping happens where the signal is raised.
func RetryAfter(delay time.Duration) Outcome {
	return Outcome{
		kind:  RETRIED,
		delay: delay,
	}
}

// Abort builds the outcome for an abort signal with an optional reason.
func Abort(reason string) Outcome {
	return Outcome{
		kind:   ABORTED,
		reason: reason,
	}
}

// Fault builds the outcome for an uncaught handler failure.
func Fault(err error) Outcome {
	return Outcome{
		kind: FAULTED,
		err:  err,
	}
}

// Kind returns the outcome variant.
func (o Outcome) Kind() OutcomeKind {
	return o.kind
}

// Data returns the completed value, nil for other variants.
func (o Outcome) Data() Payload {
	return o.data
}

// Delay returns the requested redelivery delay, zero for other variants.
func (o Outcome) Delay() time.Duration {
	return o.delay
}

// Reason returns the failure reason reported to the operator: the abort
// reason, or the fault's error message.
func (o Outcome) Reason() string {
	if o.kind == FAULTED && o.err != nil {
		return o.err.Error()
	}
	return o.reason
}

// Err returns the fault error, nil for other variants.
func (o Outcome) Err() error {
	return o.err
}

// IsCompleted reports whether the handler returned normally.
func (o Outcome) IsCompleted() bool {
	return o.kind == COMPLETED
}

// IsTerminalFailure reports whether the outcome maps to a fail
// acknowledgment (abort or fault).
func (o Outcome) IsTerminalFailure() bool {
	return o.kind == ABORTED || o.kind == FAULTED
}
