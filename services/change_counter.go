package services

import "sync/atomic"

// ChangeCounter is a ChangeListener that counts notifications, so pollers
// can tell whether their copy of the working set is stale.
type ChangeCounter struct {
	version atomic.Uint64
}

var _ ChangeListener = (*ChangeCounter)(nil)

func (c *ChangeCounter) OnChanged() {
	c.version.Add(1)
}

// Version may be read from any goroutine.
func (c *ChangeCounter) Version() uint64 {
	return c.version.Load()
}
