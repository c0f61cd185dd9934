package file

import (
	"context"
	"path/filepath"
	"testing"
)

func TestBlockListIdempotentAdd(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blocklist.txt")

	b, err := NewBlockList(path)
	if err != nil {
		t.Fatalf("NewBlockList failed: %v", err)
	}

	if err := b.Add(ctx, "us8821.nordvpn.com"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := b.Add(ctx, "us8821.nordvpn.com"); err != nil {
		t.Fatalf("second Add failed: %v", err)
	}

	n, _ := b.Size(ctx)
	if n != 1 {
		t.Errorf("Size = %d after duplicate add, want 1", n)
	}
}

func TestBlockListPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blocklist.txt")

	b, err := NewBlockList(path)
	if err != nil {
		t.Fatalf("NewBlockList failed: %v", err)
	}
	for _, h := range []string{"de1042.nordvpn.com", "us8821.nordvpn.com"} {
		if err := b.Add(ctx, h); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	// A fresh instance on the same path resumes with the same knowledge.
	b2, err := NewBlockList(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	ok, _ := b2.Contains(ctx, "de1042.nordvpn.com")
	if !ok {
		t.Error("reloaded blocklist lost de1042.nordvpn.com")
	}
	n, _ := b2.Size(ctx)
	if n != 2 {
		t.Errorf("reloaded Size = %d, want 2", n)
	}
}

func TestBlockListClear(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blocklist.txt")

	b, _ := NewBlockList(path)
	_ = b.Add(ctx, "us8821.nordvpn.com")
	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	n, _ := b.Size(ctx)
	if n != 0 {
		t.Errorf("Size = %d after clear, want 0", n)
	}

	// Clear reaches the file too, not just memory.
	b2, _ := NewBlockList(path)
	n, _ = b2.Size(ctx)
	if n != 0 {
		t.Errorf("reloaded Size = %d after clear, want 0", n)
	}
}

func TestBlockListMissingFile(t *testing.T) {
	b, err := NewBlockList(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	n, _ := b.Size(context.Background())
	if n != 0 {
		t.Errorf("Size = %d for fresh store, want 0", n)
	}
}
