package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"delivery-tracker/core/reconcile"
)

// LogDirectory is the event log collection stored as <dir>/<name><ext>.
type LogDirectory struct {
	fs  FileSystem
	dir string
	ext string
}

// NewLogDirectory returns the log store of cfg.LogDir.
func NewLogDirectory(fsys FileSystem, cfg Config) *LogDirectory {
	return &LogDirectory{fs: fsys, dir: cfg.LogDir, ext: cfg.LogExt}
}

// Open implements reconcile.LogStore.
func (d *LogDirectory) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := d.fs.Open(ctx, path.Join(d.dir, name+d.ext))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s%s: %w", name, d.ext, reconcile.ErrLogNotFound)
		}
		return nil, err
	}
	return rc, nil
}
