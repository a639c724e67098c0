package schedule

// Config holds the locations and layouts of the schedule datasets.
type Config struct {
	// Backend selects where datasets live: "local" (directory) or "s3" (storage bucket).
	Backend string `mapstructure:"backend" default:"local"`
	// Root is the base directory (local) or key prefix (s3) of every path below.
	Root string `mapstructure:"root" default:"."`

	// MasterFile is the master dataset (.xlsx or .csv).
	MasterFile string `mapstructure:"master_file" default:"master.xlsx"`
	// MasterSheet is the master worksheet; empty selects the first sheet.
	MasterSheet string `mapstructure:"master_sheet" default:""`
	// PrimaryColumn is the header label of the primary key.
	PrimaryColumn string `mapstructure:"primary_column" default:"Matricola"`
	// SecondaryColumn is the header label of the secondary key.
	SecondaryColumn string `mapstructure:"secondary_column" default:"Articolo"`
	// RevisionColumn is the header label of the revision.
	RevisionColumn string `mapstructure:"revision_column" default:"Revisione"`
	// IdentifierColumn names event logs; empty uses the secondary key column.
	IdentifierColumn string `mapstructure:"identifier_column" default:""`
	// DropColumns removes master columns whose header contains any of these labels.
	DropColumns []string `mapstructure:"drop_columns" default:"Data prevista avanzamento,Data effettiva avanzamento"`

	// SnapshotDir holds the planning snapshots.
	SnapshotDir string `mapstructure:"snapshot_dir" default:"Planning"`
	// SnapshotPrefix precedes the yy_mm_dd date in snapshot names.
	SnapshotPrefix string `mapstructure:"snapshot_prefix" default:"Planning_"`
	// SnapshotExt is the snapshot extension.
	SnapshotExt string `mapstructure:"snapshot_ext" default:".xlsx"`
	// SnapshotSheet is the snapshot worksheet; empty selects the first sheet.
	SnapshotSheet string `mapstructure:"snapshot_sheet" default:""`
	// StartRow is the first 1-based data row of a snapshot.
	StartRow int `mapstructure:"start_row" default:"5"`
	// PrimaryCol is the 1-based primary key column of a snapshot.
	PrimaryCol int `mapstructure:"primary_col" default:"2"`
	// SecondaryCol is the 1-based secondary key column of a snapshot.
	SecondaryCol int `mapstructure:"secondary_col" default:"4"`
	// ValueCol is the 1-based planned date column of a snapshot.
	ValueCol int `mapstructure:"value_col" default:"31"`

	// LogDir holds the per-item event logs.
	LogDir string `mapstructure:"log_dir" default:"logs"`
	// LogExt is the event log extension.
	LogExt string `mapstructure:"log_ext" default:".csv"`

	// Output is the reconciled workbook path; a .json extension writes JSON instead.
	Output string `mapstructure:"output" default:"Avanzamento_schede_automated.xlsx"`
	// ErrorLimit caps the resolution errors listed in summaries.
	ErrorLimit int `mapstructure:"error_limit" default:"20"`
}

// identifierColumn returns the column naming event logs.
func (c Config) identifierColumn() string {
	if c.IdentifierColumn != "" {
		return c.IdentifierColumn
	}
	return c.SecondaryColumn
}
