package config

import (
	"github.com/caarlos0/env/v11"
)

// parseEnv overlays fields whose env tag is set in the environment;
// unset variables leave the current value untouched.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
