package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("Open", func(t *testing.T) {
		t.Run("initializes new repository", func(t *testing.T) {
			dir := t.TempDir()
			r, err := Open(dir)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if r.Dir() != dir {
				t.Errorf("Dir = %q, want %q", r.Dir(), dir)
			}
			if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
				t.Errorf(".git directory not created: %v", err)
			}
		})

		t.Run("reopens existing repository", func(t *testing.T) {
			dir := t.TempDir()
			if _, err := Open(dir); err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			r, err := Open(dir)
			if err != nil {
				t.Fatalf("second Open failed: %v", err)
			}

			os.WriteFile(filepath.Join(dir, "r.json"), []byte("{}\n"), 0o644)
			if err := r.Commit(ctx, "add r.json", "r.json"); err != nil {
				t.Fatalf("Commit failed: %v", err)
			}

			again, err := Open(dir)
			if err != nil {
				t.Fatalf("reopen failed: %v", err)
			}
			n, err := again.Count()
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if n != 1 {
				t.Errorf("Count after reopen = %d, want 1", n)
			}
		})
	})

	t.Run("Commit", func(t *testing.T) {
		setup := func(t *testing.T) (*Repo, string) {
			t.Helper()
			dir := t.TempDir()
			r, err := Open(dir)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			return r, dir
		}

		t.Run("valid", func(t *testing.T) {
			t.Run("commits a new file", func(t *testing.T) {
				r, dir := setup(t)
				os.WriteFile(filepath.Join(dir, "r.json"), []byte("{}\n"), 0o644)
				if err := r.Commit(ctx, "create r.json", "r.json"); err != nil {
					t.Fatalf("Commit failed: %v", err)
				}
				n, err := r.Count()
				if err != nil {
					t.Fatalf("Count failed: %v", err)
				}
				if n != 1 {
					t.Errorf("Count = %d, want 1", n)
				}
			})

			t.Run("unchanged file is a no-op", func(t *testing.T) {
				r, dir := setup(t)
				os.WriteFile(filepath.Join(dir, "r.json"), []byte("{}\n"), 0o644)
				if err := r.Commit(ctx, "create r.json", "r.json"); err != nil {
					t.Fatalf("Commit failed: %v", err)
				}
				if err := r.Commit(ctx, "no change", "r.json"); err != nil {
					t.Fatalf("Commit failed: %v", err)
				}
				n, err := r.Count()
				if err != nil {
					t.Fatalf("Count failed: %v", err)
				}
				if n != 1 {
					t.Errorf("Count after no-op commit = %d, want 1", n)
				}
			})

			t.Run("stages deletions", func(t *testing.T) {
				r, dir := setup(t)
				path := filepath.Join(dir, "r.json")
				os.WriteFile(path, []byte("{}\n"), 0o644)
				if err := r.Commit(ctx, "create r.json", "r.json"); err != nil {
					t.Fatalf("Commit failed: %v", err)
				}
				os.Remove(path)
				if err := r.Commit(ctx, "delete r.json", "r.json"); err != nil {
					t.Fatalf("Commit of deletion failed: %v", err)
				}
				n, err := r.Count()
				if err != nil {
					t.Fatalf("Count failed: %v", err)
				}
				if n != 2 {
					t.Errorf("Count after deletion = %d, want 2", n)
				}
			})

			t.Run("no files is a no-op", func(t *testing.T) {
				r, _ := setup(t)
				if err := r.Commit(ctx, "nothing"); err != nil {
					t.Fatalf("Commit failed: %v", err)
				}
				n, err := r.Count()
				if err != nil {
					t.Fatalf("Count failed: %v", err)
				}
				if n != 0 {
					t.Errorf("Count = %d, want 0", n)
				}
			})
		})

		t.Run("errors", func(t *testing.T) {
			t.Run("canceled context", func(t *testing.T) {
				r, dir := setup(t)
				os.WriteFile(filepath.Join(dir, "r.json"), []byte("{}\n"), 0o644)
				canceled, cancel := context.WithCancel(context.Background())
				cancel()
				if err := r.Commit(canceled, "create r.json", "r.json"); err == nil {
					t.Error("Commit with canceled context expected error, got nil")
				}
			})
		})
	})

	t.Run("Count", func(t *testing.T) {
		t.Run("empty repository", func(t *testing.T) {
			r, err := Open(t.TempDir())
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			n, err := r.Count()
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if n != 0 {
				t.Errorf("Count = %d, want 0", n)
			}
		})
	})
}
