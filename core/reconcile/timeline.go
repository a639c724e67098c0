package reconcile

import (
	"strings"
	"time"
)

// DefaultSentinels are the placeholder tokens meaning "not yet committed".
var DefaultSentinels = []string{"KOM"}

// Consolidator picks the representative expected date of a timeline.
type Consolidator struct {
	sentinels map[string]struct{}
	layouts   []string
}

// NewConsolidator builds a consolidator recognising the given sentinel tokens
// (case-insensitive) and date layouts. Nil arguments select the defaults.
func NewConsolidator(sentinels, layouts []string) *Consolidator {
	if sentinels == nil {
		sentinels = DefaultSentinels
	}
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	set := make(map[string]struct{}, len(sentinels))
	for _, s := range sentinels {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return &Consolidator{sentinels: set, layouts: layouts}
}

// IsSentinel reports whether the value is blank or a placeholder token.
func (c *Consolidator) IsSentinel(value string) bool {
	v := strings.ToUpper(strings.TrimSpace(value))
	if v == "" {
		return true
	}
	_, ok := c.sentinels[v]
	return ok
}

// Consolidate scans values ordered newest first and returns the first valid date.
// Sentinels and unparsable text are skipped.
func (c *Consolidator) Consolidate(newestFirst []string) (time.Time, bool) {
	for _, v := range newestFirst {
		if c.IsSentinel(v) {
			continue
		}
		if t, ok := ParseDate(v, c.layouts); ok {
			return t, true
		}
	}
	return time.Time{}, false
}
