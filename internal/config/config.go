// Package config loads the gateway's immutable, process-wide configuration.
//
// The teacher (internal/config) parses flags and env vars directly into a
// flat struct. The gateway's config is nested (spec.md §6: app, logging,
// upstream, security, cors, plus per-surface host/port), so it is loaded
// with viper the way the richest config consumer in the retrieval pack
// (go-coffee) layers a YAML file under env overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ndrandal/quant-gateway/internal/mode"
)

// Config is read once at startup and threaded through by pointer. Nothing
// in the gateway mutates it after Load returns.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Security SecurityConfig `mapstructure:"security"`
	CORS     CORSConfig     `mapstructure:"cors"`
	HTTP     SurfaceConfig  `mapstructure:"http"`
	RPC      SurfaceConfig  `mapstructure:"rpc"`
	Workers  WorkersConfig  `mapstructure:"workers"`
}

type AppConfig struct {
	Name             string `mapstructure:"name"`
	Mode             mode.Mode
	AllowRealTrading bool `mapstructure:"allow_real_trading"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

type UpstreamConfig struct {
	DataDir            string        `mapstructure:"data_dir"`
	MaxSubs            int           `mapstructure:"max_subs"`
	QueueDepth         int           `mapstructure:"queue_depth"`
	HeartbeatTimeout   time.Duration `mapstructure:"heartbeat_timeout"`
	FirehoseEnabled    bool          `mapstructure:"firehose_enabled"`
	IdleSweepInterval  time.Duration `mapstructure:"idle_sweep_interval"`
	AuditMongoURI      string        `mapstructure:"audit_mongo_uri"`
	AuditRetentionDays int           `mapstructure:"audit_retention_days"`
}

type SecurityConfig struct {
	Tokens     []string `mapstructure:"tokens"`
	HTTPHeader string   `mapstructure:"http_header"`
	RPCHeader  string   `mapstructure:"rpc_header"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
}

type SurfaceConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type WorkersConfig struct {
	MaxWorkers int `mapstructure:"max_workers"`
}

// Load reads config from the given YAML file (if present), then env vars
// prefixed GATEWAY_, then defaults, and finally resolves the run-mode from
// APP_MODE per spec.md §6.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	m, err := mode.FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.App.Mode = m

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "quant-gateway")
	v.SetDefault("app.allow_real_trading", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("upstream.data_dir", "./data")
	v.SetDefault("upstream.max_subs", 512)
	v.SetDefault("upstream.queue_depth", 256)
	v.SetDefault("upstream.heartbeat_timeout", 90*time.Second)
	v.SetDefault("upstream.firehose_enabled", true)
	v.SetDefault("upstream.idle_sweep_interval", 15*time.Second)
	v.SetDefault("upstream.audit_retention_days", 30)

	v.SetDefault("security.http_header", "Authorization")
	v.SetDefault("security.rpc_header", "authorization")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE"})

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("rpc.host", "0.0.0.0")
	v.SetDefault("rpc.port", 9090)

	v.SetDefault("workers.max_workers", 32)
}
