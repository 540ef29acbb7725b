// Versions the store directory using go-git (pure Go, no git binary).

// Package history commits record mutations to a git repository rooted at the
// store directory, giving the store an audit trail beyond the operation log.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	authorName  = "recordstore"
	authorEmail = "recordstore@localhost"
)

// Repo wraps a git repository over the store directory.
type Repo struct {
	dir  string
	repo *gogit.Repository
	mu   sync.Mutex
}

// Open opens the git repository at dir, initializing it if needed.
func Open(dir string) (*Repo, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		// Not a repo yet — initialize.
		repo, err = gogit.PlainInit(dir, false)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize git repo: %w", err)
		}
		cfg, err := repo.Config()
		if err != nil {
			return nil, fmt.Errorf("failed to read git config: %w", err)
		}
		cfg.User.Name = authorName
		cfg.User.Email = authorEmail
		if err := repo.SetConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to write git config: %w", err)
		}
	}
	return &Repo{dir: dir, repo: repo}, nil
}

// Dir returns the repository directory.
func (r *Repo) Dir() string {
	return r.dir
}

// Commit stages the named files (additions, edits and deletions alike) and
// commits them. Unchanged files are a no-op, not an error.
func (r *Repo) Commit(ctx context.Context, msg string, files ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(files) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	// Add stages removals too when the file no longer exists on disk.
	for _, f := range files {
		if _, err := w.Add(f); err != nil {
			return fmt.Errorf("failed to stage %s: %w", f, err)
		}
	}

	status, err := w.Status()
	if err != nil {
		return fmt.Errorf("failed to get worktree status: %w", err)
	}
	staged := false
	for _, f := range files {
		switch status.File(f).Staging {
		case gogit.Added, gogit.Modified, gogit.Deleted:
			staged = true
		}
	}
	if !staged {
		return nil
	}

	now := time.Now()
	if _, err := w.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  now,
		},
	}); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Count returns the total number of commits in the repository.
func (r *Repo) Count() (int, error) {
	iter, err := r.repo.Log(&gogit.LogOptions{})
	if err != nil {
		return 0, nil // no commits yet is not an error
	}
	defer iter.Close()

	n := 0
	for {
		if _, err := iter.Next(); err != nil {
			break
		}
		n++
	}
	return n, nil
}
