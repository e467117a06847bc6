package dnd

import "sync"

// Session identifies one drag on a Channel. The zero Session is never issued.
type Session uint64

// Channel carries the drop effect from the drop zone that accepted a drop to
// the drag source whose dragend reads it. Only one drag is active per
// Channel at a time.
type Channel struct {
	mu       sync.Mutex
	current  Session
	effect   string
	recorded bool
}

// NewChannel creates an idle channel.
func NewChannel() *Channel {
	return &Channel{}
}

// Begin starts a new drag session and forgets any earlier effect.
func (c *Channel) Begin() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current++
	c.effect = ""
	c.recorded = false
	return c.current
}

// Record stores the drop effect for the active session.
func (c *Channel) Record(effect string) {
	c.mu.Lock()
	c.effect = effect
	c.recorded = true
	c.mu.Unlock()
}

// Take returns the effect recorded for s and resets the channel. It reports
// false when s is not the active session or nothing was recorded.
func (c *Channel) Take(s Session) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s == 0 || s != c.current || !c.recorded {
		return "", false
	}
	effect := c.effect
	c.effect = ""
	c.recorded = false
	return effect, true
}

// Active returns the most recently begun session.
func (c *Channel) Active() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
