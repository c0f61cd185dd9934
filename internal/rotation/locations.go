package rotation

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/vietddude/rotor/internal/core/domain"
	"github.com/vietddude/rotor/internal/infra/storage/file"
	"github.com/vietddude/rotor/internal/infra/vpn"
)

// LocationCache holds the candidate egress locations offered by the control
// plane. A configured path makes the cache survive controller restarts.
type LocationCache struct {
	plane  vpn.ControlPlane
	path   string
	tokens []string
	log    *slog.Logger
}

// NewLocationCache loads path when present; a missing or empty file just
// means the first Sample triggers a refresh.
func NewLocationCache(plane vpn.ControlPlane, path string, log *slog.Logger) *LocationCache {
	c := &LocationCache{plane: plane, path: path, log: log}
	if path != "" {
		if tokens, err := file.ReadLines(path); err == nil {
			c.tokens = tokens
		} else {
			log.Warn("Failed to load location cache file", "path", path, "error", err)
		}
	}
	return c
}

// Len returns the number of cached candidates.
func (c *LocationCache) Len() int { return len(c.tokens) }

// Tokens returns a copy of the cached candidates.
func (c *LocationCache) Tokens() []string {
	out := make([]string, len(c.tokens))
	copy(out, c.tokens)
	return out
}

// Refresh queries the control plane for the available locations. An empty
// result means no candidates exist anywhere, which nothing upstream can
// recover from, so it surfaces as a fatal failure.
func (c *LocationCache) Refresh(ctx context.Context) error {
	raw, err := c.plane.ListLocations(ctx)
	if err != nil {
		return domain.Fatal("refresh locations", err)
	}
	tokens := vpn.ParseLocations(raw)
	if len(tokens) == 0 {
		return domain.Fatalf("control plane returned no locations")
	}

	c.tokens = tokens
	c.log.Info("Location cache refreshed", "count", len(tokens))

	if c.path != "" {
		if err := file.WriteLines(c.path, tokens); err != nil {
			c.log.Warn("Failed to persist location cache", "error", err)
		}
	}
	return nil
}

// Sample returns a uniformly random candidate, refreshing once if the cache
// is empty.
func (c *LocationCache) Sample(ctx context.Context) (string, error) {
	if len(c.tokens) == 0 {
		if err := c.Refresh(ctx); err != nil {
			return "", err
		}
	}
	return c.tokens[rand.Intn(len(c.tokens))], nil
}
