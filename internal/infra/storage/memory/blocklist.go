package memory

import (
	"context"
	"sort"
	"sync"
)

// BlockList keeps the blocked-host set in process memory. State is lost on
// restart, which the run model allows.
type BlockList struct {
	mu    sync.RWMutex
	hosts map[string]struct{}
}

func NewBlockList() *BlockList {
	return &BlockList{hosts: make(map[string]struct{})}
}

func (b *BlockList) Add(ctx context.Context, hostname string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hosts[hostname] = struct{}{}
	return nil
}

func (b *BlockList) Contains(ctx context.Context, hostname string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.hosts[hostname]
	return ok, nil
}

func (b *BlockList) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hosts = make(map[string]struct{})
	return nil
}

func (b *BlockList) Size(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.hosts), nil
}

func (b *BlockList) All(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hosts := make([]string, 0, len(b.hosts))
	for h := range b.hosts {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts, nil
}
