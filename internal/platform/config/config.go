package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config is used to hold all runtime configuration.
type Config struct {
	Bitcoin struct {
		Network string `default:"mainnet" envconfig:"BITCOIN_CHAIN"`
	}
	Vesting struct {
		ClaimantKey string `envconfig:"CLAIMANT_KEY" json:"CLAIMANT_KEY"`
		UnlockMode  string `default:"linear" envconfig:"UNLOCK_MODE"`
	}
}

// SafeConfig masks sensitive config values
func SafeConfig(cfg Config) *Config {
	cfgSafe := cfg

	if len(cfgSafe.Vesting.ClaimantKey) > 0 {
		cfgSafe.Vesting.ClaimantKey = "*** Masked ***"
	}

	return &cfgSafe
}

// Environment returns configuration sourced from environment variables
func Environment() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("VESTING", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
