package reconcile

import "strings"

// KeyIndex maps normalized keys to snapshot values.
type KeyIndex map[string]string

// NormalizeKey trims surrounding whitespace from a raw key.
func NormalizeKey(raw string) string {
	return strings.TrimSpace(raw)
}

// BuildIndex indexes entries by the key selected from each entry.
// Blank keys are never inserted and a repeated key keeps the last value seen.
func BuildIndex(entries []SnapshotEntry, key func(SnapshotEntry) string) KeyIndex {
	idx := make(KeyIndex, len(entries))
	for _, e := range entries {
		k := NormalizeKey(key(e))
		if k == "" {
			continue
		}
		idx[k] = e.Value
	}
	return idx
}

// Lookup returns the value stored for a raw key.
func (i KeyIndex) Lookup(raw string) (string, bool) {
	k := NormalizeKey(raw)
	if k == "" {
		return "", false
	}
	v, ok := i[k]
	return v, ok
}

func primaryKeyOf(e SnapshotEntry) string   { return e.PrimaryKey }
func secondaryKeyOf(e SnapshotEntry) string { return e.SecondaryKey }
