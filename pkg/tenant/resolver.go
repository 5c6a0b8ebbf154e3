package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Resolver extracts a tenant identifier from an HTTP request.
type Resolver interface {
	// Resolve extracts the tenant identifier from the request.
	// Returns empty string if no tenant identifier is found.
	// Returns error if the extraction fails.
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc is an adapter to allow the use of ordinary functions as Resolvers.
type ResolverFunc func(r *http.Request) (string, error)

// Resolve calls the function.
func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// HeaderResolver extracts the tenant identifier from an explicit HTTP header.
// This is the highest-priority signal: an integration that sets the header is
// stating the tenant outright.
type HeaderResolver struct {
	// HeaderName is the name of the header to read (e.g., "X-Tenant-ID").
	HeaderName string
}

// NewHeaderResolver creates a new header resolver.
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}
	return &HeaderResolver{HeaderName: headerName}
}

// Resolve extracts the tenant identifier from the configured header.
func (r *HeaderResolver) Resolve(req *http.Request) (string, error) {
	return req.Header.Get(r.HeaderName), nil
}

// SubdomainResolver extracts the tenant identifier from the request subdomain.
type SubdomainResolver struct {
	// Suffix to strip from the host (e.g., ".assetgrid.io").
	// If empty, only the first subdomain part is used.
	Suffix string
}

// NewSubdomainResolver creates a new subdomain resolver.
func NewSubdomainResolver(suffix string) *SubdomainResolver {
	return &SubdomainResolver{Suffix: suffix}
}

// Resolve extracts the tenant from the subdomain (e.g., "acme" from
// "acme.assetgrid.io"). The base domain and a bare "www" are not tenants.
func (r *SubdomainResolver) Resolve(req *http.Request) (string, error) {
	host := req.Host

	// Strip port if present
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	// A tenant subdomain requires at least subdomain.domain.tld.
	if len(strings.Split(host, ".")) < 3 {
		return "", nil
	}

	if r.Suffix != "" {
		if !strings.HasSuffix(host, r.Suffix) {
			return "", nil
		}
		host = host[:len(host)-len(r.Suffix)]
	}

	parts := strings.Split(host, ".")
	if len(parts) == 0 || parts[0] == "" {
		return "", nil
	}

	subdomain := parts[0]
	if subdomain == "www" {
		if len(parts) < 2 || parts[1] == "" {
			return "", nil
		}
		subdomain = parts[1]
	}

	return strings.ToLower(subdomain), nil
}

// ClaimResolver extracts the tenant identifier from a tenant claim embedded in
// the request's bearer token. It is the lowest-priority signal, consulted when
// neither a header nor a subdomain identifies the tenant.
type ClaimResolver struct {
	signingKey []byte
	claimName  string
}

// tenantClaims is the subset of the access-token claims this resolver reads.
type tenantClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// NewClaimResolver creates a resolver that validates the Authorization bearer
// token with the given HMAC signing key and reads its "tenant_id" claim.
func NewClaimResolver(signingKey []byte) *ClaimResolver {
	return &ClaimResolver{signingKey: signingKey, claimName: "tenant_id"}
}

// Resolve extracts the tenant id claim from a valid bearer token. A request
// without an Authorization header resolves to empty; a malformed or badly
// signed token is an error rather than an anonymous pass-through.
func (r *ClaimResolver) Resolve(req *http.Request) (string, error) {
	if len(r.signingKey) == 0 {
		return "", errors.New("claim resolver: signing key not configured")
	}

	auth := req.Header.Get("Authorization")
	if auth == "" {
		return "", nil
	}

	raw, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return "", nil
	}

	claims := &tenantClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return r.signingKey, nil
	})
	if err != nil {
		// A bad credential is the caller's error; the sentinel lets the
		// middleware answer with a client status instead of a 500.
		return "", fmt.Errorf("%w: claim resolver: %w", ErrInvalidIdentifier, err)
	}

	return claims.TenantID, nil
}

// CompositeResolver tries multiple resolvers in order until one yields an
// identifier. The standard chain is header, then subdomain, then token claim.
type CompositeResolver struct {
	Resolvers []Resolver
}

// NewCompositeResolver creates a new composite resolver.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

// Resolve tries each resolver in order, returning the first non-empty result.
func (c *CompositeResolver) Resolve(r *http.Request) (string, error) {
	var errs []error

	for _, resolver := range c.Resolvers {
		id, err := resolver.Resolve(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if id != "" {
			return id, nil
		}
	}

	if len(errs) > 0 {
		return "", fmt.Errorf("composite resolver: %w", errors.Join(errs...))
	}

	return "", nil
}
