package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("invalid server port")
	}

	if c.DBPath == "" {
		return errors.New("db path must not be empty")
	}

	switch c.Push.Mode {
	case PushModeLocal:
	case PushModeGateway:
		if c.Push.GatewayEndpoint == "" {
			return errors.New("gateway endpoint must be specified for gateway push mode")
		}
	default:
		return fmt.Errorf("invalid push mode: %s. Must be 'local' or 'gateway'", c.Push.Mode)
	}

	if c.Push.RateLimit <= 0 {
		return errors.New("websocket rate limit must be positive")
	}

	if c.Push.HeartbeatTimeout <= 0 {
		return errors.New("heartbeat timeout must be positive")
	}

	// snowflake reserves 10 bits for the node
	if c.SnowflakeNode < 0 || c.SnowflakeNode > 1023 {
		return errors.New("snowflake node must be between 0 and 1023")
	}
	return nil
}
