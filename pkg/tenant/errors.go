package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant matches the resolved identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrNoTenantInContext is returned when an operation that requires a tenant
	// runs with none set. Persistence paths treat this as fail-closed.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrTenantMismatch is returned when a record already stamped with one
	// tenant is written under a different tenant's context.
	ErrTenantMismatch = errors.New("record belongs to a different tenant")

	// ErrInactiveTenant is returned when the resolved tenant is deactivated.
	ErrInactiveTenant = errors.New("tenant is inactive")
)
