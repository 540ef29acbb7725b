package ops

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dsumitro/recordstore/internal/store"
)

// Merge aggregates every record in the store into a single output record
// keyed by filename without extension. Reads run with overlapping in-flight
// I/O; any failure aborts before the output file is written, so no partial
// merge output ever hits disk.
func (o *Ops) Merge(ctx context.Context) error {
	if err := o.merge(ctx); err != nil {
		o.record(ctx, "ERROR merging store")
		return err
	}
	o.record(ctx, fmt.Sprintf("merged store into %s successfully", o.opts.MergeFile))
	return nil
}

func (o *Ops) merge(ctx context.Context) error {
	names, err := o.store.List(o.opts.MergeFile)
	if err != nil {
		return err
	}
	merged := make(store.Record, len(names))
	var mu sync.Mutex
	var g errgroup.Group
	for _, name := range names {
		g.Go(func() error {
			rec, err := o.store.Read(name)
			if err != nil {
				return err
			}
			mu.Lock()
			merged[strings.TrimSuffix(name, filepath.Ext(name))] = rec
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := o.store.Write(o.opts.MergeFile, merged); err != nil {
		return err
	}
	return o.commit(ctx, "merge store", o.opts.MergeFile)
}

// Union logs the sorted, deduplicated keys present in either record.
func (o *Ops) Union(ctx context.Context, fileA, fileB string) error {
	return o.compare(ctx, "union", fileA, fileB, store.Union)
}

// Intersect logs the sorted keys present in both records.
func (o *Ops) Intersect(ctx context.Context, fileA, fileB string) error {
	return o.compare(ctx, "intersection", fileA, fileB, store.Intersect)
}

// Difference logs the sorted keys present in exactly one of the two records.
func (o *Ops) Difference(ctx context.Context, fileA, fileB string) error {
	return o.compare(ctx, "difference", fileA, fileB, store.Difference)
}

func (o *Ops) compare(ctx context.Context, op, fileA, fileB string, fn func(a, b store.Record) []string) error {
	ra, err := o.store.Read(fileA)
	if err != nil {
		o.record(ctx, fmt.Sprintf("ERROR comparing %s and %s", fileA, fileB))
		return err
	}
	rb, err := o.store.Read(fileB)
	if err != nil {
		o.record(ctx, fmt.Sprintf("ERROR comparing %s and %s", fileA, fileB))
		return err
	}
	keys := fn(ra, rb)
	o.record(ctx, fmt.Sprintf("%s of %s and %s: %s", op, fileA, fileB, strings.Join(keys, ",")))
	return nil
}
