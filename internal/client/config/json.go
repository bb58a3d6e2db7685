package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/wellkeeper/internal/flagx"
	"github.com/dmitrijs2005/wellkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	WatchRetryMax       timex.Duration `json:"watch_retry_max"`
	LogLevel            string         `json:"log_level"`
	Export              struct {
		Region       string `json:"region"`
		BaseEndpoint string `json:"base_endpoint"`
		AccessKey    string `json:"access_key"`
		SecretKey    string `json:"secret_key"`
		Bucket       string `json:"bucket"`
	} `json:"export"`
}

// parseJson overlays Config with the non-empty values of the file named by
// -c/-config. Read or unmarshal errors panic.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigPath(args)
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.WatchRetryMax.Duration != 0 {
		cfg.WatchRetryMax = jc.WatchRetryMax.Duration
	}
	overlay(&cfg.LogLevel, jc.LogLevel)
	overlay(&cfg.Export.Region, jc.Export.Region)
	overlay(&cfg.Export.BaseEndpoint, jc.Export.BaseEndpoint)
	overlay(&cfg.Export.AccessKey, jc.Export.AccessKey)
	overlay(&cfg.Export.SecretKey, jc.Export.SecretKey)
	overlay(&cfg.Export.Bucket, jc.Export.Bucket)
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
