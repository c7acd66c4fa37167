package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. LPCTL_FEE_BPS.
const EnvPrefix = "LPCTL"

// ApproximateConfig holds configuration for the approximate command.
type ApproximateConfig struct {
	// CurrentPrice is nil when no price was supplied; the pool is queried then.
	CurrentPrice *float64
	FeeBps       uint32
	Yes          bool
	DebugFile    string
	Precision    int
	Span         float64
	RPCURL       string
	Pool         string
	MaxRetries   int
	RetryBackoff time.Duration
	Out          string
	PGDSN        string
	LogLevel     string
}

// LoadApproximate merges config file, environment variables, and flags into
// ApproximateConfig.
func LoadApproximate(cfgFile string, flags *pflag.FlagSet) (ApproximateConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"fee-bps":       0,
		"precision":     30,
		"span":          16.0,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return ApproximateConfig{}, err
	}

	fee, err := feeBps(v)
	if err != nil {
		return ApproximateConfig{}, err
	}

	cfg := ApproximateConfig{
		FeeBps:       fee,
		Yes:          v.GetBool("yes"),
		DebugFile:    v.GetString("debug-file"),
		Precision:    v.GetInt("precision"),
		Span:         v.GetFloat64("span"),
		RPCURL:       v.GetString("rpc"),
		Pool:         v.GetString("pool"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		LogLevel:     v.GetString("log-level"),
	}
	if priceSet(v) {
		price := v.GetFloat64("current-price")
		cfg.CurrentPrice = &price
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

// priceSet distinguishes an explicit price from the flag's zero default;
// IsSet ignores flags that were not changed.
func priceSet(v *viper.Viper) bool {
	return v.IsSet("current-price")
}

// feeBps reads fee-bps without narrowing: env and file values skip pflag's
// uint32 parsing, so anything outside uint32 is rejected here.
func feeBps(v *viper.Viper) (uint32, error) {
	fee, err := cast.ToInt64E(v.Get("fee-bps"))
	if err != nil {
		return 0, fmt.Errorf("parse fee-bps: %w", err)
	}
	if fee < 0 || fee > math.MaxUint32 {
		return 0, fmt.Errorf("fee-bps out of range: %d", fee)
	}
	return uint32(fee), nil
}
