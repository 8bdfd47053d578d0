package watchdog

import (
	"sync"
	"time"
)

// Cooldowns remembers the last moderation action per key.
type Cooldowns struct {
	mu   sync.Mutex
	last map[Key]time.Time
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{last: make(map[Key]time.Time)}
}

// OnCooldown reports whether an action for key happened less than d before now.
func (c *Cooldowns) OnCooldown(key Key, now time.Time, d time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	last, ok := c.last[key]
	return ok && now.Sub(last) < d
}

// Mark records an action for key at now, replacing any earlier one.
func (c *Cooldowns) Mark(key Key, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[key] = now
}

// Sweep forgets entries whose cooldown has fully elapsed.
func (c *Cooldowns) Sweep(now time.Time, d time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, last := range c.last {
		if now.Sub(last) >= d {
			delete(c.last, key)
		}
	}
	return len(c.last)
}
