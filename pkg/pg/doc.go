// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool with
// retrying Connect, goose schema migrations, a health check closure, and
// error classification helpers for the SQLSTATE codes the stores care about.
//
// Configuration comes from the environment via the struct tags on [Config];
// the only required variable is DATABASE_URL.
package pg
