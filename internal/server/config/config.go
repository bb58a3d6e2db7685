// Package config handles configuration for the server component:
// defaults, then WELLKEEPER_* environment variables, then an optional JSON
// file, then command-line flags.
package config

import "time"

// Drivers the server can store entries in.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds runtime settings for the wellkeeper server.
//
// DatabaseDSN is a file path for the sqlite driver and a pgx DSN for the
// postgres driver.
type Config struct {
	EndpointAddrGRPC            string        `env:"WELLKEEPER_GRPC_ADDR"`
	MetricsAddr                 string        `env:"WELLKEEPER_METRICS_ADDR"`
	Driver                      string        `env:"WELLKEEPER_DB_DRIVER"`
	DatabaseDSN                 string        `env:"WELLKEEPER_DATABASE_DSN"`
	SecretKey                   string        `env:"WELLKEEPER_SECRET_KEY"`
	AccessTokenValidityDuration time.Duration `env:"WELLKEEPER_TOKEN_TTL"`
	ListenRetryMax              time.Duration `env:"WELLKEEPER_LISTEN_RETRY_MAX"`
	LogLevel                    string        `env:"WELLKEEPER_LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.MetricsAddr = ":9090"
	c.Driver = DriverSQLite
	c.DatabaseDSN = "wellkeeper.db"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.ListenRetryMax = 30 * time.Second
	c.LogLevel = "info"
}

// LoadConfig builds a Config from the process environment and arguments.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
