package reconcile

// Config holds the tunables of the reconciliation engine.
type Config struct {
	// Sentinels lists placeholder tokens ignored during consolidation.
	Sentinels []string `mapstructure:"sentinels" default:"KOM"`
	// Marker is the event log sequence code carrying the completion date.
	Marker string `mapstructure:"marker" default:"90"`
	// RevisionSuffix joins an identifier and its revision in a log name.
	RevisionSuffix string `mapstructure:"revision_suffix" default:"_rev"`
	// SequenceColumn is the header label of the event log sequence column.
	SequenceColumn string `mapstructure:"sequence_column" default:"Seq"`
	// DateColumn is the header label of the event log date column.
	DateColumn string `mapstructure:"date_column" default:"Data"`
	// Delimiter separates event log fields.
	Delimiter string `mapstructure:"delimiter" default:","`
	// Workers bounds per-record and per-snapshot parallelism.
	Workers int `mapstructure:"workers" default:"4"`
}

// ResolverOptions returns the event log options described by the config.
func (c Config) ResolverOptions() ResolverOptions {
	opts := ResolverOptions{
		Marker:         c.Marker,
		RevisionSuffix: c.RevisionSuffix,
		SequenceColumn: c.SequenceColumn,
		DateColumn:     c.DateColumn,
	}
	if r := []rune(c.Delimiter); len(r) > 0 {
		opts.Delimiter = r[0]
	}
	return opts
}
