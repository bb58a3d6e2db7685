package config

import "time"

// Export locates the S3-compatible bucket used by the export command.
// An empty Bucket disables exports.
type Export struct {
	Region       string `env:"WELLKEEPER_S3_REGION"`
	BaseEndpoint string `env:"WELLKEEPER_S3_ENDPOINT"`
	AccessKey    string `env:"WELLKEEPER_S3_ACCESS_KEY"`
	SecretKey    string `env:"WELLKEEPER_S3_SECRET_KEY"`
	Bucket       string `env:"WELLKEEPER_S3_BUCKET"`
}

// Config holds runtime settings for the wellkeeper CLI.
type Config struct {
	ServerEndpointAddr  string        `env:"WELLKEEPER_SERVER_ADDR"`
	OnlineCheckInterval time.Duration `env:"WELLKEEPER_ONLINE_CHECK_INTERVAL"`
	WatchRetryMax       time.Duration `env:"WELLKEEPER_WATCH_RETRY_MAX"`
	LogLevel            string        `env:"WELLKEEPER_LOG_LEVEL"`
	Export              Export
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.WatchRetryMax = 15 * time.Second
	c.LogLevel = "warn"
	c.Export = Export{Region: "us-east-1"}
}

// LoadConfig constructs a Config, applies defaults, then overlays the
// environment, JSON (if present) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
