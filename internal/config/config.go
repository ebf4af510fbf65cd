package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Pools                    string
	Out                      string
	PgDSN                    string
	LogLevel                 string
	ExitFeePercentage        string
	DirectionalFeeMultiplier string
	PenalizedIndexIn         int
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("QUOTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("pools", "./data/pools.jsonl")
	v.SetDefault("out", "./data/quotes.jsonl")
	v.SetDefault("log-level", "info")
	v.SetDefault("exit-fee", "10000000000000000")
	v.SetDefault("directional-fee-multiplier", "2000000000000000000")
	v.SetDefault("penalized-index-in", 0)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Pools:                    v.GetString("pools"),
		Out:                      v.GetString("out"),
		PgDSN:                    v.GetString("pg-dsn"),
		LogLevel:                 v.GetString("log-level"),
		ExitFeePercentage:        v.GetString("exit-fee"),
		DirectionalFeeMultiplier: v.GetString("directional-fee-multiplier"),
		PenalizedIndexIn:         v.GetInt("penalized-index-in"),
	}

	return cfg, nil
}
