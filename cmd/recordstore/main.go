// Package main is the entry point for the recordstore CLI.
//
// recordstore is a file-backed key-value record store: each record is one
// JSON object file in a store directory, every operation appends one line to
// an append-only operation log, and mutations can optionally be versioned
// with git. Configuration is read from CLI flags and recordstore.yaml.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/dsumitro/recordstore/internal/config"
	"github.com/dsumitro/recordstore/internal/history"
	"github.com/dsumitro/recordstore/internal/oplog"
	"github.com/dsumitro/recordstore/internal/ops"
	"github.com/dsumitro/recordstore/internal/store"
	"github.com/dsumitro/recordstore/internal/watch"
)

const usageText = `usage: recordstore [flags] <operation> [args...]

operations:
  get <file> <key>            log the value stored at key
  set <file> <key> <value>    set key to value and rewrite the record
  remove <file> <key>         delete key and rewrite the record
  create <file>               create an empty record, never overwriting
  delete <file>               unlink a record
  merge                       aggregate all records into the merge file
  union <fileA> <fileB>       log keys present in either record
  intersect <fileA> <fileB>   log keys present in both records
  difference <fileA> <fileB>  log keys present in exactly one record
  reset                       restore seed records and truncate the log
  watch                       report external changes to the store directory

flags:
`

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "recordstore: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	configPath := flag.String("config", "recordstore.yaml", "Path to the configuration file (created with defaults if missing)")
	dir := flag.String("dir", "", "Store directory (overrides the configuration file)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)
	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", *logLevel)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return errors.New("missing operation")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dir != "" {
		cfg.Dir = *dir
	}

	st, err := store.New(cfg.Dir)
	if err != nil {
		return err
	}
	var hist *history.Repo
	if cfg.History {
		if hist, err = history.Open(cfg.Dir); err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
	}
	o := ops.New(st, oplog.New(cfg.LogPath()), hist, ops.Options{
		SetCreatesMissing: cfg.SetCreatesMissing,
		StrictRemove:      cfg.StrictRemove,
		MergeFile:         cfg.MergeFile,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	return run(ctx, o, cfg, args[0], args[1:])
}

// run dispatches a single operation. Operation failures are already recorded
// in the operation log, which is the store's user-visible error channel, so
// they are reported to the diagnostic logger without failing the process.
func run(ctx context.Context, o *ops.Ops, cfg *config.Config, op string, args []string) error {
	argc := map[string]int{
		"get": 2, "set": 3, "remove": 2,
		"create": 1, "delete": 1,
		"union": 2, "intersect": 2, "difference": 2,
		"merge": 0, "reset": 0, "watch": 0,
	}
	want, ok := argc[op]
	if !ok {
		return fmt.Errorf("unknown operation: %s", op)
	}
	if len(args) != want {
		return fmt.Errorf("%s takes %d argument(s), got %d", op, want, len(args))
	}

	var err error
	switch op {
	case "get":
		err = o.Get(ctx, args[0], args[1])
	case "set":
		err = o.Set(ctx, args[0], args[1], parseValue(args[2]))
	case "remove":
		err = o.Remove(ctx, args[0], args[1])
	case "create":
		err = o.CreateFile(ctx, args[0])
	case "delete":
		err = o.DeleteFile(ctx, args[0])
	case "merge":
		err = o.Merge(ctx)
	case "union":
		err = o.Union(ctx, args[0], args[1])
	case "intersect":
		err = o.Intersect(ctx, args[0], args[1])
	case "difference":
		err = o.Difference(ctx, args[0], args[1])
	case "reset":
		if err := o.Reset(ctx); err != nil {
			return err // reset failures must surface, not be swallowed
		}
	case "watch":
		slog.InfoContext(ctx, "Watching store directory", "dir", cfg.Dir)
		return watch.Watch(ctx, cfg.Dir, func(ev fsnotify.Event) {
			slog.InfoContext(ctx, "Store modified", "op", ev.Op.String(), "file", filepath.Base(ev.Name))
		})
	}
	if err != nil {
		slog.WarnContext(ctx, "Operation failed", "op", op, "err", err)
	}
	return nil
}

// parseValue interprets a CLI value argument: valid JSON scalars (numbers,
// booleans, null, quoted strings) keep their type, anything else is a plain
// string.
func parseValue(arg string) any {
	var v any
	if err := json.Unmarshal([]byte(arg), &v); err != nil {
		return arg
	}
	switch v.(type) {
	case map[string]any, []any:
		return arg // records are flat; nested values stay literal text
	}
	return v
}
