package file

import (
	"context"
	"sort"
	"sync"
)

// BlockList persists the blocked-host set to a newline-delimited file,
// rewritten on every change and reloaded at construction.
type BlockList struct {
	mu    sync.RWMutex
	path  string
	hosts map[string]struct{}
}

// NewBlockList loads path if it exists and starts empty otherwise.
func NewBlockList(path string) (*BlockList, error) {
	b := &BlockList{path: path, hosts: make(map[string]struct{})}
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}
	for _, h := range lines {
		b.hosts[h] = struct{}{}
	}
	return b, nil
}

func (b *BlockList) Add(ctx context.Context, hostname string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.hosts[hostname]; ok {
		return nil
	}
	b.hosts[hostname] = struct{}{}
	return b.flush()
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
	return b.flush()
}

func (b *BlockList) Size(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.hosts), nil
}

func (b *BlockList) All(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sorted(), nil
}

func (b *BlockList) sorted() []string {
	hosts := make([]string, 0, len(b.hosts))
	for h := range b.hosts {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

func (b *BlockList) flush() error {
	return WriteLines(b.path, b.sorted())
}
