package main

import "time"

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"` // development, staging, production

	// BaseDomain is the suffix stripped by the subdomain resolver:
	// acme.assetgrid.example resolves tenant "acme".
	BaseDomain string `env:"BASE_DOMAIN" envDefault:"assetgrid.example"`

	// JWTSecret enables the access-token fallback resolver when set.
	JWTSecret string `env:"JWT_SECRET"`

	TenantCacheTTL time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`

	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	WebhookWorkers   int           `env:"WEBHOOK_WORKERS" envDefault:"8"`
	WebhookQueueSize int           `env:"WEBHOOK_QUEUE_SIZE" envDefault:"256"`
	WebhookTimeout   time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
}
