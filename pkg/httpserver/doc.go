// Package httpserver wraps net/http with graceful shutdown, configurable
// timeouts, lifecycle hooks, and a health check handler.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal
// arrives, then drains connections within the shutdown deadline. Errors are
// wrapped with the ErrStart and ErrShutdown sentinels for errors.Is checks.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil { ... }
package httpserver
