package ops

import (
	"context"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/dsumitro/recordstore/internal/store"
)

// Seed records restored by Reset: two user records and one post record.
var seeds = map[string]store.Record{
	"scott.json": {
		"firstname": "Scott",
		"lastname":  "Roberts",
		"email":     "sroberts@talentpath.com",
		"username":  "scoot",
	},
	"andrew.json": {
		"firstname": "Andrew",
		"lastname":  "Maney",
		"email":     "amaney@talentpath.com",
	},
	"post.json": {
		"title":       "Hello world",
		"description": "A first post",
	},
}

// Reset restores the three seed records to their fixed content and truncates
// the operation log. The four writes run concurrently without ordering among
// them; Reset waits for all of them and returns the first failure rather
// than discarding it. On success the log is left empty — reset itself is the
// one operation that does not append a line.
func (o *Ops) Reset(ctx context.Context) error {
	if err := o.reset(ctx); err != nil {
		o.record(ctx, "ERROR resetting store")
		return err
	}
	return nil
}

func (o *Ops) reset(ctx context.Context) error {
	var g errgroup.Group
	for name, rec := range seeds {
		g.Go(func() error {
			return o.store.Write(name, rec)
		})
	}
	g.Go(o.log.Truncate)
	if err := g.Wait(); err != nil {
		return err
	}
	return o.commit(ctx, "reset store", slices.Sorted(maps.Keys(seeds))...)
}
