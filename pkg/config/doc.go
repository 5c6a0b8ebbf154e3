// Package config loads typed configuration from environment variables.
//
// It combines github.com/joho/godotenv for .env files with
// github.com/caarlos0/env/v11 for struct parsing and caches each parsed
// struct type for the lifetime of the process, so every component can call
// [Load] for its own config slice without re-reading the environment.
//
//	type ServerConfig struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil { ... }
//
// Sentinel errors wrap the underlying causes via errors.Join; compare with
// errors.Is. [ResetCache] clears the cache between tests.
package config
