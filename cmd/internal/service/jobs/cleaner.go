package jobs

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

const ConnectionCleanInterval = 5 * time.Minute

type StaleConnectionExpirer interface {
	ExpireStale(ctx context.Context, timeout time.Duration) int
}

// ConnectionCleaner hangs up on gateway connections that stopped sending
// heartbeats. Local websockets detect dead peers themselves through ping/pong.
type ConnectionCleaner struct {
	expirer StaleConnectionExpirer
	timeout time.Duration
}

func NewConnectionCleaner(expirer StaleConnectionExpirer, timeout time.Duration) *ConnectionCleaner {
	return &ConnectionCleaner{expirer: expirer, timeout: timeout}
}

func (c *ConnectionCleaner) Start(ctx context.Context) {
	// Poll every 5 minutes
	ticker := time.NewTicker(ConnectionCleanInterval)
	defer ticker.Stop()

	log.Info("Connection cleaner cron started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping connection cleaner...")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *ConnectionCleaner) cleanup(ctx context.Context) {
	if expired := c.expirer.ExpireStale(ctx, c.timeout); expired > 0 {
		log.Infof("Cleaner: terminated %d stale connections", expired)
	}
}
