package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// logOutcome is the extracted result of one event log.
type logOutcome struct {
	found bool
	date  *time.Time
	err   error
}

// logCache memoises log outcomes by log name. Many master records share one
// item code, so each log is opened and scanned at most once per resolver.
type logCache struct {
	mu      sync.RWMutex
	entries map[string]logOutcome
	sf      singleflight.Group
}

func newLogCache() *logCache {
	return &logCache{entries: make(map[string]logOutcome)}
}

// getOrLoad returns the cached outcome for name or loads it.
// Concurrent callers for the same name share a single load.
func (c *logCache) getOrLoad(ctx context.Context, name string, load func(context.Context, string) logOutcome) logOutcome {
	c.mu.RLock()
	out, ok := c.entries[name]
	c.mu.RUnlock()
	if ok {
		return out
	}

	v, _, _ := c.sf.Do(name, func() (interface{}, error) {
		c.mu.RLock()
		out, ok := c.entries[name]
		c.mu.RUnlock()
		if ok {
			return out, nil
		}

		out = load(ctx, name)
		// Cancellation is not a property of the log; let the next caller retry.
		if ctx.Err() == nil {
			c.mu.Lock()
			c.entries[name] = out
			c.mu.Unlock()
		}
		return out, nil
	})
	return v.(logOutcome)
}

// size returns the number of cached outcomes.
func (c *logCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
