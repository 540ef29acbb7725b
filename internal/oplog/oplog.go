// Package oplog implements the append-only operation log: one line per
// operation, a free-text message followed by a millisecond epoch timestamp.
// The log is business state read back by tooling, not diagnostics; lines are
// never rewritten or reordered.
package oplog

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"
)

// Log appends timestamped lines to a single log file.
type Log struct {
	path string
	mu   sync.Mutex

	now func() time.Time // overridden in tests
}

// New returns a Log writing to path. The file is created on first append.
func New(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Append writes "<message> <epoch-millis>\n" to the log. Appends are
// serialized so concurrent operations cannot interleave bytes within a line.
func (l *Log) Append(message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G302/G304: 0o644 log file at a configured path
	if err != nil {
		return fmt.Errorf("failed to open log for append: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	if _, err := fmt.Fprintf(f, "%s %d\n", message, l.now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to write log line: %w", err)
	}
	return nil
}

// Truncate empties the log file, creating it if absent.
func (l *Log) Truncate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.Create(l.path) //nolint:gosec // G304: configured path
	if err != nil {
		return fmt.Errorf("failed to truncate log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close log: %w", err)
	}
	return nil
}

// Lines returns every entry currently in the log. A missing log file is an
// empty log, not an error.
func (l *Log) Lines() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.Open(l.path) //nolint:gosec // G304: configured path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	return lines, nil
}
