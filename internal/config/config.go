// Package config binds environment-variable overrides onto the router's
// runtime options using viper.
package config

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Options is the small set of operator-tunable knobs that sit alongside
// the three mandatory positional CLI arguments. None of these override or
// replace the positional arguments; they only adjust ambient behavior:
// logging, metrics, fragment-group eviction.
type Options struct {
	LogLevel    string `mapstructure:"log_level"`
	LogFile     string `mapstructure:"log_file"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	GroupTTL    string `mapstructure:"group_ttl"` // parsed with time.ParseDuration; empty disables eviction
}

// Load reads ROUTER_* environment variables into Options, applying the
// given defaults for anything unset.
func Load(defaults Options) (Options, error) {
	v := viper.New()
	v.SetEnvPrefix("ROUTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("metrics_addr", defaults.MetricsAddr)
	v.SetDefault("group_ttl", defaults.GroupTTL)

	// BindEnv registers each field explicitly so AutomaticEnv picks up
	// ROUTER_LOG_LEVEL, ROUTER_LOG_FILE, ROUTER_METRICS_ADDR, ROUTER_GROUP_TTL.
	for _, key := range []string{"log_level", "log_file", "metrics_addr", "group_ttl"} {
		if err := v.BindEnv(key); err != nil {
			return Options{}, err
		}
	}

	var opts Options
	decoderOpts := func(c *mapstructure.DecoderConfig) {
		c.TagName = "mapstructure"
	}
	if err := v.Unmarshal(&opts, decoderOpts); err != nil {
		return Options{}, err
	}

	return opts, nil
}
