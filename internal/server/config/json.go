package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/flagx"
	"github.com/dmitrijs2005/wellkeeper/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "1m" style
// strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	MetricsAddr                 string         `json:"metrics_addr"`
	Driver                      string         `json:"driver"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	ListenRetryMax              timex.Duration `json:"listen_retry_max"`
	LogLevel                    string         `json:"log_level"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

// parseJson loads the file named by -c/-config, if any. Fields missing
// from the file keep their current values. Unreadable or malformed files
// panic.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigPath(args)
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.Driver, c.Driver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.ListenRetryMax, c.ListenRetryMax)
	setString(&config.LogLevel, c.LogLevel)
}
