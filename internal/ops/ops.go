// Package ops implements the public operation surface of the record store:
// get, set, remove, create, delete, merge, union, intersect, difference and
// reset. Every operation performs its work, appends exactly one line to the
// operation log, and returns an explicit error for callers and tests. The
// log stays the only channel the original tooling reads; callers that want
// the log-and-continue behavior simply drop the returned error.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dsumitro/recordstore/internal/history"
	"github.com/dsumitro/recordstore/internal/oplog"
	"github.com/dsumitro/recordstore/internal/store"
)

// Options holds the behavior knobs left open by the store's contract.
type Options struct {
	// SetCreatesMissing makes Set create the record file when absent instead
	// of failing.
	SetCreatesMissing bool

	// StrictRemove makes Remove fail when the key is absent instead of
	// succeeding as a no-op.
	StrictRemove bool

	// MergeFile is the name of the merge output record. Defaults to
	// merge.json.
	MergeFile string
}

// Ops composes the record store, the operation log and optional history.
type Ops struct {
	store *store.Store
	log   *oplog.Log
	hist  *history.Repo // nil when history is disabled
	opts  Options
}

// New returns an Ops over the given store and operation log. hist may be nil
// to disable git versioning.
func New(st *store.Store, log *oplog.Log, hist *history.Repo, opts Options) *Ops {
	if opts.MergeFile == "" {
		opts.MergeFile = "merge.json"
	}
	return &Ops{store: st, log: log, hist: hist, opts: opts}
}

// record appends one line to the operation log. Log failures are telemetry,
// not business failures; they are reported to the diagnostic logger and
// swallowed.
func (o *Ops) record(ctx context.Context, message string) {
	if err := o.log.Append(message); err != nil {
		slog.WarnContext(ctx, "Failed to append to operation log", "err", err)
	}
}

// commit versions a successful mutation when history is enabled.
func (o *Ops) commit(ctx context.Context, msg string, files ...string) error {
	if o.hist == nil {
		return nil
	}
	return o.hist.Commit(ctx, msg, files...)
}

// Get looks up key in file. On success the logged text is the stored value
// itself, not a wrapper around it.
func (o *Ops) Get(ctx context.Context, file, key string) error {
	rec, err := o.store.Read(file)
	if err != nil {
		o.record(ctx, "ERROR no such file or directory "+file)
		return err
	}
	v, ok := rec[key]
	if !ok || falsy(v) {
		o.record(ctx, fmt.Sprintf("ERROR %s invalid key on %s", key, file))
		return fmt.Errorf("%w: %s on %s", store.ErrKeyNotFound, key, file)
	}
	o.record(ctx, formatValue(v))
	return nil
}

// Set sets key to value in file and writes the record back. A missing file
// is an error unless Options.SetCreatesMissing is set.
func (o *Ops) Set(ctx context.Context, file, key string, value any) error {
	if err := o.set(ctx, file, key, value); err != nil {
		o.record(ctx, fmt.Sprintf("ERROR setting %s to %s on %s", key, formatValue(value), file))
		return err
	}
	o.record(ctx, fmt.Sprintf("set %s to %s on %s successfully", key, formatValue(value), file))
	return nil
}

func (o *Ops) set(ctx context.Context, file, key string, value any) error {
	rec, err := o.store.Read(file)
	if err != nil {
		if !o.opts.SetCreatesMissing || !errors.Is(err, store.ErrNotFound) {
			return err
		}
		rec = store.Record{}
	}
	rec[key] = value
	if err := o.store.Write(file, rec); err != nil {
		return err
	}
	return o.commit(ctx, fmt.Sprintf("set %s on %s", key, file), file)
}

// Remove deletes key from file and writes the record back. Removing an
// absent key is an idempotent no-op unless Options.StrictRemove is set; the
// no-op is still followed by a success log line.
func (o *Ops) Remove(ctx context.Context, file, key string) error {
	if err := o.remove(ctx, file, key); err != nil {
		o.record(ctx, fmt.Sprintf("ERROR removing %s from %s", key, file))
		return err
	}
	o.record(ctx, fmt.Sprintf("removed %s from %s successfully", key, file))
	return nil
}

func (o *Ops) remove(ctx context.Context, file, key string) error {
	rec, err := o.store.Read(file)
	if err != nil {
		return err
	}
	if _, ok := rec[key]; !ok {
		if o.opts.StrictRemove {
			return fmt.Errorf("%w: %s on %s", store.ErrKeyNotFound, key, file)
		}
		return nil
	}
	delete(rec, key)
	if err := o.store.Write(file, rec); err != nil {
		return err
	}
	return o.commit(ctx, fmt.Sprintf("remove %s from %s", key, file), file)
}

// CreateFile creates file as an empty record. An existing file is left
// untouched and logged as an error.
func (o *Ops) CreateFile(ctx context.Context, file string) error {
	if err := o.createFile(ctx, file); err != nil {
		if errors.Is(err, store.ErrExists) {
			o.record(ctx, fmt.Sprintf("ERROR cannot create %s because it already exists", file))
		} else {
			o.record(ctx, "ERROR creating "+file)
		}
		return err
	}
	o.record(ctx, fmt.Sprintf("created %s successfully", file))
	return nil
}

func (o *Ops) createFile(ctx context.Context, file string) error {
	if err := o.store.Create(file); err != nil {
		return err
	}
	return o.commit(ctx, "create "+file, file)
}

// DeleteFile unlinks file. A missing file is logged distinguishably and
// never escapes as a crash.
func (o *Ops) DeleteFile(ctx context.Context, file string) error {
	if err := o.deleteFile(ctx, file); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			o.record(ctx, fmt.Sprintf("ERROR %s does not exist", file))
		} else {
			o.record(ctx, "ERROR deleting "+file)
		}
		return err
	}
	o.record(ctx, fmt.Sprintf("deleted %s successfully", file))
	return nil
}

func (o *Ops) deleteFile(ctx context.Context, file string) error {
	if err := o.store.Delete(file); err != nil {
		return err
	}
	return o.commit(ctx, "delete "+file, file)
}

// falsy mirrors the key-lookup contract: null, false, zero and empty string
// are treated the same as an absent key.
func falsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case float64:
		return t == 0
	case int:
		return t == 0
	case int64:
		return t == 0
	}
	return false
}

// formatValue renders a value the way it appears in log lines: strings
// verbatim, everything else as JSON.
func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
