// Package types provides core type definitions for the GoOperator consumer
// runtime. It defines the task model delivered by the operator bus, the
// accumulated per-service result records, and the identifier resolution
// rules handler code relies on when reading prior results.
package types

import "time"

// Payload is a schema-less value carried on the wire. Input, meta,
// configuration and service data are delivered as Payload; interpretation
// is left entirely to the caller.
type Payload = any

// ServiceIdentifier references a service within a task's result sequence.
// It is either a service alias or a service name, resolved per the rules
// documented on ServiceResult.Matches.
type ServiceIdentifier string

// ServiceIdentity describes the service a delivery is addressed to.
type ServiceIdentity struct {
	// ID is the stable internal identifier of the service.
	ID string

	// Alias disambiguates repeated use of the same service within one
	// task. Empty when the service appears unaliased.
	Alias string

	// Name is the service name.
	Name string

	// Version is the service version string.
	Version string

	// Configuration holds the service configuration for this task, if any.
	Configuration Payload
}

// ServiceResult is one historical execution record of a service within a
// task. A given service may appear multiple times in a task's result
// sequence; "last" lookups resolve by sequence order, never by timestamp,
// since ExecutedAt may be coarse or absent.
type ServiceResult struct {
	// ID is the stable internal identifier of the service.
	ID string

	// Alias disambiguates repeated use of the same service within one
	// task. Empty when the entry is unaliased.
	Alias string

	// Name is the service name.
	Name string

	// Version is the service version string.
	Version string

	// Configuration holds the configuration the service ran with, if any.
	Configuration Payload

	// ExecutedAt is the execution timestamp. Nil means the service has
	// not yet executed.
	ExecutedAt *time.Time

	// Data holds the successful result. At most one of Data and Error is
	// set; both are nil when the service has not yet executed.
	Data Payload

	// Error holds the failure outcome, if the execution failed.
	Error Payload
}

// Matches reports whether this entry resolves for the given identifier.
//
// Resolution rule: the identifier matches when it equals the entry's alias,
// or when it equals the entry's name and the entry has no alias set. Alias
// is the disambiguation key, so an aliased entry is never found by name —
// callers that alias a service must look it up by that alias.
func (r ServiceResult) Matches(id ServiceIdentifier) bool {
	if r.Alias != "" {
		return string(id) == r.Alias
	}
	return string(id) == r.Name
}

// Meta returns the result envelope without its data or error outcome.
func (r ServiceResult) Meta() ServiceResult {
	r.Data = nil
	r.Error = nil
	return r
}

// Task is one unit of work delivered by the operator bus. It is immutable
// for the duration of one service invocation.
type Task struct {
	// Input is the opaque task payload.
	Input Payload

	// Meta holds service-agnostic annotations attached to the task.
	Meta Payload

	// TenantName identifies the tenant the task belongs to.
	TenantName string

	// Service identifies the service step this delivery addresses.
	Service ServiceIdentity

	// Results is the ordered sequence of prior service executions.
	Results []ServiceResult
}

// FirstResult returns the first entry in sequence order matching id.
func (t Task) FirstResult(id ServiceIdentifier) (ServiceResult, bool) {
	for _, r := range t.Results {
		if r.Matches(id) {
			return r, true
		}
	}
	return ServiceResult{}, false
}

// LastResult returns the last entry in sequence order matching id.
func (t Task) LastResult(id ServiceIdentifier) (ServiceResult, bool) {
	for i := len(t.Results) - 1; i >= 0; i-- {
		if t.Results[i].Matches(id) {
			return t.Results[i], true
		}
	}
	return ServiceResult{}, false
}
