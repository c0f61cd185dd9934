package rotation

import (
	"context"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vietddude/rotor/internal/core/domain"
	"github.com/vietddude/rotor/internal/infra/storage/file"
)

func TestLocationCacheRefresh(t *testing.T) {
	plane := &fakePlane{listOut: "Austria, Belgium\nAustria, Germany"}
	c := NewLocationCache(plane, "", slog.Default())

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	want := []string{"Austria", "Belgium", "Germany"}
	if !reflect.DeepEqual(c.Tokens(), want) {
		t.Errorf("Tokens = %v, want %v", c.Tokens(), want)
	}
}

func TestLocationCacheEmptyRefreshIsFatal(t *testing.T) {
	plane := &fakePlane{listOut: ""}
	c := NewLocationCache(plane, "", slog.Default())

	err := c.Refresh(context.Background())
	if err == nil || !domain.IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
}

func TestLocationCacheSampleRefreshesOnce(t *testing.T) {
	plane := &fakePlane{listOut: "Austria"}
	c := NewLocationCache(plane, "", slog.Default())

	loc, err := c.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if loc != "Austria" {
		t.Errorf("Sample = %q, want Austria", loc)
	}
}

func TestLocationCachePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.txt")
	plane := &fakePlane{listOut: "Austria, Belgium"}

	c := NewLocationCache(plane, path, slog.Default())
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	lines, err := file.ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines failed: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"Austria", "Belgium"}) {
		t.Errorf("persisted lines = %v", lines)
	}

	// A fresh cache on the same path starts populated, no control-plane
	// query needed.
	c2 := NewLocationCache(&fakePlane{}, path, slog.Default())
	if c2.Len() != 2 {
		t.Errorf("reloaded Len = %d, want 2", c2.Len())
	}
}
