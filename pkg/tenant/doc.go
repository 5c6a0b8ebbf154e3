// Package tenant provides multi-tenancy support for the assetgrid backend:
// request-scoped tenant identification, context propagation, cached resolution,
// and the persistence guard that keeps every tenant-owned record stamped with
// exactly one immutable tenant id.
//
// # Architecture
//
// The package is built around four pieces:
//
//  1. Resolvers extract a tenant identifier from an HTTP request. The standard
//     chain checks an explicit header, then the request subdomain, then a
//     tenant claim embedded in the bearer token, in that order.
//  2. A Provider loads the full Tenant from a data source.
//  3. Middleware orchestrates resolution, caching, and context propagation.
//  4. Stamp enforces the tenant-scoped record invariant at persistence time.
//
// # Usage
//
//	resolver := tenant.NewCompositeResolver(
//		tenant.NewHeaderResolver(""),
//		tenant.NewSubdomainResolver(".assetgrid.io"),
//		tenant.NewClaimResolver(signingKey),
//	)
//
//	mw := tenant.Middleware(resolver, provider,
//		tenant.WithCacheTTL(10*time.Minute),
//		tenant.WithSkipPaths([]string{"/healthz"}),
//	)
//	router.Use(mw)
//
// Handlers read the tenant back with FromContext:
//
//	t, ok := tenant.FromContext(r.Context())
//
// # Propagation into detached work
//
// Context values die with the request context, which is exactly the lifecycle
// the tenant should have: nothing is stored in ambient state, so a reused
// worker goroutine can never observe the previous request's tenant. When work
// outlives the request (webhook fan-out, background jobs), capture the tenant
// at the hand-off boundary with Detach and pass the returned context into the
// goroutine:
//
//	go process(tenant.Detach(r.Context()))
//
// # Persistence guard
//
// Any record implementing Scoped must be stamped before its first insert:
//
//	if err := tenant.Stamp(ctx, &asset); err != nil {
//		return err // ErrNoTenantInContext: fail closed, never write orphans
//	}
//
// Stamp rejects a record that already carries a different tenant id; the id is
// immutable after creation.
package tenant
