// Package redis connects the service to Redis. It wraps the go-redis client
// with a retrying Connect and a health check probe; the rate limiting layer
// builds its shared sliding-window store on top of the returned client.
//
// Configuration is described by [Config], populated from environment
// variables via github.com/caarlos0/env. Redis is optional: when REDIS_URL
// is unset the service falls back to in-process stores.
package redis
