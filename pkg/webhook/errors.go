package webhook

import "errors"

var (
	// ErrDeliveryFailed wraps any transport error or non-2xx response from a
	// single delivery attempt. It is counted against the endpoint and never
	// propagated to the operation that triggered the event.
	ErrDeliveryFailed = errors.New("webhook delivery failed")

	// ErrRegistrationNotFound is returned when a registry lookup misses.
	ErrRegistrationNotFound = errors.New("webhook registration not found")

	// ErrInactiveRegistration is returned when a delivery is requested for a
	// disabled endpoint. Re-enabling is a manual administrative action.
	ErrInactiveRegistration = errors.New("webhook registration is inactive")

	// ErrInvalidURL is returned for target URLs that are empty or not http(s).
	ErrInvalidURL = errors.New("invalid webhook URL")

	// ErrDispatcherClosed is returned when triggering after Close.
	ErrDispatcherClosed = errors.New("webhook dispatcher is closed")
)
