package jobs

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

const (
	DemoSessionTTLMillis = int64(24 * 60 * 60 * 1000)
	DemoCleanInterval    = 1 * time.Hour
)

type DemoSessionStore interface {
	PurgeOlderThan(ttlMillis int64) int
}

// DemoSessionCleaner forgets demo sessions nobody logged out of.
type DemoSessionCleaner struct {
	store DemoSessionStore
}

func NewDemoSessionCleaner(store DemoSessionStore) *DemoSessionCleaner {
	return &DemoSessionCleaner{store: store}
}

func (c *DemoSessionCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(DemoCleanInterval)
	defer ticker.Stop()

	log.Info("Demo session cleaner cron started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping demo session cleaner...")
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *DemoSessionCleaner) cleanup() {
	removed := c.store.PurgeOlderThan(DemoSessionTTLMillis)
	if removed > 0 {
		log.Infof("Cleaner: dropped %d demo sessions older than 24h", removed)
	}
}
