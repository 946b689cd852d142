package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Initialize sets up the Snowflake node used for request IDs.
// Only the first call has any effect.
func Initialize(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// RequestID returns a new, roughly time-ordered request ID, or "" if the
// node could not be created
func RequestID() string {
	if err := Initialize(1); err != nil || node == nil {
		return ""
	}
	return node.Generate().String()
}
