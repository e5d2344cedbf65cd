// Package uid hands out snowflake ids for live connection handles.
package uid

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node    *snowflake.Node
	once    sync.Once
	initErr error
)

// Init prepares the generator for machineID (0..1023). Only the first call
// has any effect.
func Init(machineID int64) error {
	once.Do(func() {
		node, initErr = snowflake.NewNode(machineID)
		if initErr != nil {
			initErr = fmt.Errorf("snowflake node %d: %w", machineID, initErr)
		}
	})
	return initErr
}

// GenerateString returns a fresh id in its decimal form. Init must have
// succeeded before.
func GenerateString() string {
	if node == nil {
		panic("uid: package not initialized")
	}
	return strconv.FormatInt(node.Generate().Int64(), 10)
}
