package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/viper"
)

type PushMode string

const (
	// PushModeLocal serves websockets from this process.
	PushModeLocal PushMode = "local"
	// PushModeGateway delegates websockets to AWS API Gateway.
	PushModeGateway PushMode = "gateway"
)

type Config struct {
	Port        int
	FrontendURL string
	DBPath      string
	LogLevel    string
	Region      string

	Push    PushConfig
	Archive ArchiveConfig

	SnowflakeNode int64
}

type PushConfig struct {
	Mode             PushMode
	GatewayEndpoint  string
	GatewayRegion    string
	RateLimit        float64
	HeartbeatTimeout time.Duration
}

type ArchiveConfig struct {
	Bucket string
	Region string
}

// Load reads the configuration from the environment on top of the defaults.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:        v.GetInt("port"),
		FrontendURL: strings.TrimRight(v.GetString("frontend_url"), "/"),
		DBPath:      v.GetString("db_path"),
		LogLevel:    strings.ToLower(v.GetString("log_level")),
		Region:      v.GetString("system_region"),
		Push: PushConfig{
			Mode:             PushMode(strings.ToLower(v.GetString("push_mode"))),
			GatewayEndpoint:  v.GetString("gateway_endpoint"),
			GatewayRegion:    v.GetString("gateway_region"),
			RateLimit:        v.GetFloat64("ws_rate_limit"),
			HeartbeatTimeout: time.Duration(v.GetInt("heartbeat_timeout_seconds")) * time.Second,
		},
		Archive: ArchiveConfig{
			Bucket: v.GetString("s3_bucket_name"),
			Region: v.GetString("aws_s3_region"),
		},
		SnowflakeNode: v.GetInt64("snowflake_node"),
	}

	if cfg.Push.GatewayRegion == "" {
		cfg.Push.GatewayRegion = cfg.Region
	}

	if cfg.Archive.Region == "" {
		cfg.Archive.Region = cfg.Region
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// AllowedOrigins are the browser origins allowed to call the API and open sockets.
func (c *Config) AllowedOrigins() []string {
	origins := []string{"http://localhost:3000"}
	if c.FrontendURL != "" && c.FrontendURL != origins[0] {
		origins = append(origins, c.FrontendURL)
	}
	return origins
}

func (c *Config) GommonLevel() log.Lvl {
	switch c.LogLevel {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
