package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/assetgrid/assetgrid/modules/assets"
	"github.com/assetgrid/assetgrid/modules/tenants"
	"github.com/assetgrid/assetgrid/modules/webhooks"
	"github.com/assetgrid/assetgrid/pkg/clientip"
	"github.com/assetgrid/assetgrid/pkg/config"
	"github.com/assetgrid/assetgrid/pkg/httpserver"
	"github.com/assetgrid/assetgrid/pkg/logger"
	"github.com/assetgrid/assetgrid/pkg/pg"
	"github.com/assetgrid/assetgrid/pkg/ratelimit"
	appredis "github.com/assetgrid/assetgrid/pkg/redis"
	"github.com/assetgrid/assetgrid/pkg/requestid"
	"github.com/assetgrid/assetgrid/pkg/tenant"
	"github.com/assetgrid/assetgrid/pkg/webhook"
)

func main() {
	_ = config.LoadEnv() // .env is optional; real deployments set the environment directly

	var appCfg appConfig
	config.MustLoad(&appCfg)
	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	var redisCfg appredis.Config
	config.MustLoad(&redisCfg)

	log := logger.New(
		logger.WithEnvironment(appCfg.Environment, "assetgrid"),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	if err := run(appCfg, httpCfg, pgCfg, redisCfg, log); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(appCfg appConfig, httpCfg httpserver.Config, pgCfg pg.Config, redisCfg appredis.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	// Rate-limit state lives in Redis when configured, so limits hold
	// across instances. Without Redis each instance counts on its own.
	var limitStore ratelimit.Store
	healthchecks := []func(context.Context) error{pg.Healthcheck(pool)}
	if redisCfg.Enabled() {
		client, err := appredis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		limitStore, err = ratelimit.NewRedisStore(client, "ratelimit")
		if err != nil {
			return err
		}
		healthchecks = append(healthchecks, appredis.Healthcheck(client))
	} else {
		log.InfoContext(ctx, "redis not configured, using in-memory rate limiting")
		limitStore = ratelimit.NewMemoryStore()
	}

	limiter, err := ratelimit.NewSlidingWindow(limitStore, appCfg.RateLimitRequests, appCfg.RateLimitWindow)
	if err != nil {
		return err
	}

	tenantCache := tenant.NewInMemoryCache()
	tenantSvc := tenants.NewService(tenants.NewPGStore(pool), tenantCache, log)

	webhookStore := webhooks.NewPGStore(pool)
	dispatcher := webhook.NewDispatcher(webhookStore,
		webhook.WithWorkers(appCfg.WebhookWorkers),
		webhook.WithQueueSize(appCfg.WebhookQueueSize),
		webhook.WithTimeout(appCfg.WebhookTimeout),
		webhook.WithLogger(log),
	)
	defer dispatcher.Close()

	webhookSvc := webhooks.NewService(webhookStore, dispatcher, log)
	assetSvc := assets.NewService(assets.NewPGStore(pool), dispatcher, assets.WithLogger(log))

	resolvers := []tenant.Resolver{
		tenant.NewHeaderResolver(""),
		tenant.NewSubdomainResolver("." + strings.TrimPrefix(appCfg.BaseDomain, ".")),
	}
	if appCfg.JWTSecret != "" {
		resolvers = append(resolvers, tenant.NewClaimResolver([]byte(appCfg.JWTSecret)))
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)

	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log, healthchecks...))

	// Tenant administration is a platform-operator surface and sits
	// outside tenant resolution and rate limiting.
	r.Mount("/admin/tenants", tenants.Router(tenantSvc))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(tenant.Middleware(
			tenant.NewCompositeResolver(resolvers...),
			tenantSvc,
			tenant.WithCache(tenantCache),
			tenant.WithCacheTTL(appCfg.TenantCacheTTL),
			tenant.WithLogger(log),
		))
		r.Use(ratelimit.Middleware(limiter, ratelimit.FirstOf(
			ratelimit.ByHeader("X-API-Key"),
			ratelimit.ByClientIP(),
		)))

		r.Mount("/assets", assets.Router(assetSvc))
		r.Mount("/webhooks", webhooks.Router(webhookSvc))
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}
