package reconcile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// LogStore is the event log collection, addressed by log name.
type LogStore interface {
	// Open returns the log content. It returns an error wrapping ErrLogNotFound
	// when no log has the given name.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// ResolverOptions configures log naming and parsing.
type ResolverOptions struct {
	Marker         string
	RevisionSuffix string
	SequenceColumn string
	DateColumn     string
	Delimiter      rune
}

func (o ResolverOptions) withDefaults() ResolverOptions {
	if o.Marker == "" {
		o.Marker = "90"
	}
	if o.RevisionSuffix == "" {
		o.RevisionSuffix = "_rev"
	}
	if o.SequenceColumn == "" {
		o.SequenceColumn = "Seq"
	}
	if o.DateColumn == "" {
		o.DateColumn = "Data"
	}
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	return o
}

// Resolution is the outcome of a successful log lookup.
type Resolution struct {
	// LogName is the selected log.
	LogName string
	// Date is the completion date, nil when the marker row is missing or its date is unusable.
	Date *time.Time
}

// EventLogResolver selects the event log of an item and extracts its completion date.
// It is safe for concurrent use.
type EventLogResolver struct {
	store LogStore
	opts  ResolverOptions
	cache *logCache
}

// NewEventLogResolver returns a resolver reading from store.
func NewEventLogResolver(store LogStore, opts ResolverOptions) *EventLogResolver {
	return &EventLogResolver{
		store: store,
		opts:  opts.withDefaults(),
		cache: newLogCache(),
	}
}

// LogBaseName replaces path separators in an identifier so it can name a log.
func LogBaseName(identifier string) string {
	return strings.ReplaceAll(strings.TrimSpace(identifier), "/", "_")
}

// Candidates returns the log names tried for an item, in lookup order.
// A present revision, including "0", is tried before the plain name.
func (r *EventLogResolver) Candidates(identifier, revision string) []string {
	base := LogBaseName(identifier)
	if base == "" {
		return nil
	}
	if revision = strings.TrimSpace(revision); revision != "" {
		return []string{base + r.opts.RevisionSuffix + revision, base}
	}
	return []string{base}
}

// Resolve finds the log of an item and reads the date of its marker row.
// A nil Date with a nil error means the log holds no usable marker date.
func (r *EventLogResolver) Resolve(ctx context.Context, identifier, revision string) (Resolution, error) {
	names := r.Candidates(identifier, revision)
	if len(names) == 0 {
		return Resolution{}, fmt.Errorf("%w: %w", ErrNoMatchingLog, ErrNoIdentifier)
	}
	for _, name := range names {
		out := r.cache.getOrLoad(ctx, name, r.load)
		if !out.found && out.err == nil {
			continue
		}
		return Resolution{LogName: name, Date: out.date}, out.err
	}
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}
	return Resolution{}, fmt.Errorf("%w for %q (tried %s)", ErrNoMatchingLog, identifier, strings.Join(names, ", "))
}

func (r *EventLogResolver) load(ctx context.Context, name string) logOutcome {
	rc, err := r.store.Open(ctx, name)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			return logOutcome{}
		}
		if ctx.Err() != nil {
			return logOutcome{err: ctx.Err()}
		}
		return logOutcome{found: true, err: fmt.Errorf("%w: %s: %v", ErrLogUnreadable, name, err)}
	}
	defer rc.Close()

	date, err := ExtractMarkerDate(rc, r.opts)
	if err != nil {
		return logOutcome{found: true, err: fmt.Errorf("%s: %w", name, err)}
	}
	return logOutcome{found: true, date: date}
}

// ExtractMarkerDate scans a delimited event log in order and returns the date of
// the first row whose sequence code equals the marker. Scanning stops at that
// row even when its date cannot be parsed.
func ExtractMarkerDate(r io.Reader, opts ResolverOptions) (*time.Time, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty log", ErrLogMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogMalformed, err)
	}

	seqCol, dateCol := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch {
		case seqCol < 0 && strings.EqualFold(h, opts.SequenceColumn):
			seqCol = i
		case dateCol < 0 && strings.EqualFold(h, opts.DateColumn):
			dateCol = i
		}
	}
	if seqCol < 0 || dateCol < 0 {
		return nil, fmt.Errorf("%w: columns %q and %q required", ErrLogMalformed, opts.SequenceColumn, opts.DateColumn)
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLogMalformed, err)
		}
		if seqCol >= len(row) || !SequenceMatches(row[seqCol], opts.Marker) {
			continue
		}
		if dateCol >= len(row) {
			return nil, nil
		}
		if t, ok := ParseLogDate(row[dateCol]); ok {
			return &t, nil
		}
		return nil, nil
	}
}

// SequenceMatches reports whether a sequence code equals the marker,
// comparing numerically when both sides are numbers ("90.0" matches "90").
func SequenceMatches(code, marker string) bool {
	code, marker = strings.TrimSpace(code), strings.TrimSpace(marker)
	if code == "" {
		return false
	}
	if code == marker {
		return true
	}
	a, errA := strconv.ParseFloat(code, 64)
	b, errB := strconv.ParseFloat(marker, 64)
	return errA == nil && errB == nil && a == b
}
