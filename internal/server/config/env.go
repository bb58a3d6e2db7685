package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays the WELLKEEPER_* variables that are set. Unset
// variables leave the current values alone.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
