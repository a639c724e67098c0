package schedule

import (
	"context"
	"encoding/json"
	"fmt"

	"delivery-tracker/core/reconcile"
)

// JSONWriter writes the full result as indented JSON.
type JSONWriter struct {
	fs   FileSystem
	name string
}

// NewJSONWriter returns a sink writing name on fs.
func NewJSONWriter(fs FileSystem, name string) *JSONWriter {
	return &JSONWriter{fs: fs, name: name}
}

func (w *JSONWriter) Name() string {
	return "json " + w.name
}

// Write implements reconcile.Sink.
func (w *JSONWriter) Write(ctx context.Context, res *reconcile.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return w.fs.WriteFile(ctx, w.name, append(data, '\n'))
}
