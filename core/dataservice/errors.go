package dataservice

import "errors"

var (
	// ErrMissingMockAccessor is returned when an operation should use mock data,
	// but its config lacks the mock accessor for that operation.
	ErrMissingMockAccessor = errors.New("mock accessor missing")

	// ErrMissingEndpoint is returned when an operation should use the network,
	// but its config has no endpoint.
	ErrMissingEndpoint = errors.New("endpoint missing")

	// ErrMissingTransport is returned when an operation should use the network,
	// but the behavior has no transport.
	ErrMissingTransport = errors.New("transport missing")

	// ErrNotFound is returned by a Resource when an item is not in its mock store.
	ErrNotFound = errors.New("not found")
)
