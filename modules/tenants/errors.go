package tenants

import "errors"

var (
	ErrNameRequired     = errors.New("tenant name is required")
	ErrInvalidSubdomain = errors.New("invalid subdomain")
	ErrSubdomainTaken   = errors.New("subdomain is already taken")
)
