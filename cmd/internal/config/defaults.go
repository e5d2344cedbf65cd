package config

import "github.com/spf13/viper"

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("port", 4000)
	v.SetDefault("frontend_url", "http://Event-Driven-Notification-Platform-1")
	v.SetDefault("db_path", "notifyflow.sqlite")
	v.SetDefault("log_level", "info")
	v.SetDefault("system_region", "us-east-1")
	v.SetDefault("snowflake_node", 1)

	// Push channel
	v.SetDefault("push_mode", string(PushModeLocal))
	v.SetDefault("gateway_endpoint", "")
	v.SetDefault("gateway_region", "")
	v.SetDefault("ws_rate_limit", 5)
	v.SetDefault("heartbeat_timeout_seconds", 70)

	// Log archive
	v.SetDefault("s3_bucket_name", "")
	v.SetDefault("aws_s3_region", "")
}
