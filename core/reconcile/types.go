package reconcile

import "time"

// MasterRecord is one manufacturing item read from the master dataset.
// Records are identified by their position (Row) in the master set; neither
// key is unique on its own.
type MasterRecord struct {
	// Row is the zero-based position of the record in the master set.
	Row int `json:"row"`

	// PrimaryKey is the serial number (Matricola). May be blank.
	PrimaryKey string `json:"primary_key"`

	// SecondaryKey is the item code (Articolo). May be blank.
	SecondaryKey string `json:"secondary_key"`

	// Identifier names the item in the event log collection.
	Identifier string `json:"identifier"`

	// Revision is the normalized revision number; empty means absent and "0" is a real revision.
	Revision string `json:"revision,omitempty"`

	// Fields holds every passthrough column verbatim, keyed by header label.
	// Date cells are held as YYYY-MM-DD.
	Fields map[string]string `json:"fields"`

	// Kinds records the fields that were not text cells in the source.
	Kinds map[string]FieldKind `json:"-"`
}

// FieldKind is the source type of a passthrough field.
type FieldKind uint8

const (
	TextField FieldKind = iota
	NumberField
	DateField
	BoolField
)

// Kind returns the source type of a field; text when unrecorded.
func (r *MasterRecord) Kind(label string) FieldKind {
	return r.Kinds[label]
}

// MasterSet is the master dataset with its header order preserved.
type MasterSet struct {
	// Headers lists the passthrough column labels in file order.
	Headers []string `json:"headers"`

	// Records holds the items in row order.
	Records []*MasterRecord `json:"records"`
}

// SnapshotEntry is one (primary key, secondary key, value) triple of a snapshot.
type SnapshotEntry struct {
	PrimaryKey   string
	SecondaryKey string
	Value        string
}

// SnapshotHandle identifies a snapshot before it is loaded.
type SnapshotHandle struct {
	// Date is the snapshot date encoded in its name.
	Date time.Time `json:"date"`

	// Label is a display label, usually the date in ISO form.
	Label string `json:"label"`

	// Name locates the dataset for the snapshot source (e.g. a file name).
	Name string `json:"name"`
}

// Snapshot is one dated planning dataset.
type Snapshot struct {
	SnapshotHandle

	// Entries holds the triples in dataset order.
	Entries []SnapshotEntry

	// Warnings counts malformed values that were read as absent.
	Warnings int
}

// Timeline holds one resolved value per snapshot, aligned to the ascending
// snapshot order. An empty string marks an absent value.
type Timeline []string

// NewestFirst returns the timeline values ordered from the newest snapshot
// to the oldest, as the consolidation scan requires.
func (t Timeline) NewestFirst() []string {
	out := make([]string, len(t))
	for i, v := range t {
		out[len(t)-1-i] = v
	}
	return out
}

// ReconciledRecord is a master record augmented with the computed dates and delta.
// Delta is set if and only if both dates are set.
type ReconciledRecord struct {
	*MasterRecord

	// Timeline holds the per-snapshot values in ascending snapshot order.
	Timeline Timeline `json:"timeline"`

	// ExpectedDate is the consolidated planned completion date.
	ExpectedDate *time.Time `json:"expected_date"`

	// ActualDate is the completion date read from the event log.
	ActualDate *time.Time `json:"actual_date"`

	// Delta is ActualDate - ExpectedDate in whole days.
	Delta *int `json:"delta"`

	// LogName is the event log selected for the record, if any.
	LogName string `json:"log_name,omitempty"`
}

// MatchStats counts how master records matched one snapshot.
type MatchStats struct {
	Snapshot  string `json:"snapshot"`
	Primary   int    `json:"primary"`
	Secondary int    `json:"secondary"`
	Unmatched int    `json:"unmatched"`
	Warnings  int    `json:"warnings"`
}

// Coverage summarises how many records received each computed field.
type Coverage struct {
	Total    int `json:"total"`
	Expected int `json:"expected"`
	Actual   int `json:"actual"`
	Delta    int `json:"delta"`
}

// DeltaRate is the share of records with a populated delta, in [0, 1].
func (c Coverage) DeltaRate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Delta) / float64(c.Total)
}

// Result is the output of one pipeline run.
type Result struct {
	// RunID correlates logs and persisted rows of one run.
	RunID string `json:"run_id"`

	// Headers are the master passthrough headers.
	Headers []string `json:"headers"`

	// Snapshots lists the snapshots used, ascending by date.
	Snapshots []SnapshotHandle `json:"snapshots"`

	// Records holds one reconciled record per master record, in row order.
	Records []ReconciledRecord `json:"records"`

	// Matches holds the match counters per snapshot, ascending by date.
	Matches []MatchStats `json:"matches"`

	// Errors lists per-record log resolution failures in row order.
	Errors []ResolutionError `json:"errors"`

	// Coverage summarises field population.
	Coverage Coverage `json:"coverage"`
}
