package reconcile

import "sync/atomic"

// MatchKind tells which key joined a master record to a snapshot entry.
type MatchKind int

const (
	// NoMatch means neither key was found in the snapshot.
	NoMatch MatchKind = iota
	// PrimaryMatch means the primary key was found.
	PrimaryMatch
	// SecondaryMatch means the secondary key was used as fallback.
	SecondaryMatch
)

func (k MatchKind) String() string {
	switch k {
	case PrimaryMatch:
		return "primary"
	case SecondaryMatch:
		return "secondary"
	default:
		return "none"
	}
}

// SnapshotMatcher resolves master records against one snapshot.
// It is safe for concurrent use.
type SnapshotMatcher struct {
	label     string
	warnings  int
	primary   KeyIndex
	secondary KeyIndex

	primaryHits   atomic.Int64
	secondaryHits atomic.Int64
	misses        atomic.Int64
}

// NewSnapshotMatcher indexes the snapshot by both keys.
func NewSnapshotMatcher(s *Snapshot) *SnapshotMatcher {
	return &SnapshotMatcher{
		label:     s.Label,
		warnings:  s.Warnings,
		primary:   BuildIndex(s.Entries, primaryKeyOf),
		secondary: BuildIndex(s.Entries, secondaryKeyOf),
	}
}

// Resolve returns the snapshot value for the record.
// The secondary key is consulted only when the primary key has no entry.
func (m *SnapshotMatcher) Resolve(rec *MasterRecord) (string, MatchKind) {
	if v, ok := m.primary.Lookup(rec.PrimaryKey); ok {
		m.primaryHits.Add(1)
		return v, PrimaryMatch
	}
	if v, ok := m.secondary.Lookup(rec.SecondaryKey); ok {
		m.secondaryHits.Add(1)
		return v, SecondaryMatch
	}
	m.misses.Add(1)
	return "", NoMatch
}

// Stats returns the match counters accumulated so far.
func (m *SnapshotMatcher) Stats() MatchStats {
	return MatchStats{
		Snapshot:  m.label,
		Primary:   int(m.primaryHits.Load()),
		Secondary: int(m.secondaryHits.Load()),
		Unmatched: int(m.misses.Load()),
		Warnings:  m.warnings,
	}
}
