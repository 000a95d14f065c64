package opererrors

import "errors"

var (
	ErrorCouldNotSubscribe   = errors.New("could not subscribe to operator")
	ErrorNoHandlerProvided   = errors.New("no handler provided")
	ErrorNoOperatorProvided  = errors.New("no operator provided")
	ErrorAlreadyUnsubscribed = errors.New("subscription already unsubscribed")
	ErrorCouldNotAcknowledge = errors.New("could not acknowledge task")
)

var (
	ErrorInvalidURL      = errors.New("configuration url is missing or invalid")
	ErrorInvalidVersion  = errors.New("configuration version is not a major.minor.patch version")
	ErrorInvalidPrefetch = errors.New("configuration prefetch must be a positive integer")
)

var (
	ErrorSlotReleasedTwice = errors.New("admission slot released twice")
	ErrorTooManyInFlight   = errors.New("more tasks in flight than prefetch allows")
)
