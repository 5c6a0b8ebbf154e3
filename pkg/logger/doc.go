// Package logger standardises structured logging on top of slog.
//
// [New] builds a *slog.Logger from functional options: output format, level,
// static attributes, and ContextExtractor callbacks that inject
// request-scoped values (request id, tenant id) into every record. Helper
// attribute constructors such as [TenantID], [WebhookID], and [Error] keep
// key naming consistent across packages.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Environment, "assetgrid"),
//	    logger.WithContextExtractors(tenant.LoggerExtractor(), requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
package logger
