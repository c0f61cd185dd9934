// Package redis backs the blocklist with a Redis set so concurrent runs on
// one host share blocking knowledge.
package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Key      string `yaml:"key"`
}

// BlockList implements storage.BlockList on a Redis set.
type BlockList struct {
	rdb *redis.Client
	key string
}

// NewBlockList connects to Redis and verifies the connection.
func NewBlockList(cfg Config) (*BlockList, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = "rotor:blocklist"
	}
	return &BlockList{rdb: rdb, key: key}, nil
}

func (b *BlockList) Add(ctx context.Context, hostname string) error {
	if err := b.rdb.SAdd(ctx, b.key, hostname).Err(); err != nil {
		return fmt.Errorf("failed to add to blocklist: %w", err)
	}
	return nil
}

func (b *BlockList) Contains(ctx context.Context, hostname string) (bool, error) {
	ok, err := b.rdb.SIsMember(ctx, b.key, hostname).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blocklist: %w", err)
	}
	return ok, nil
}

func (b *BlockList) Clear(ctx context.Context) error {
	if err := b.rdb.Del(ctx, b.key).Err(); err != nil {
		return fmt.Errorf("failed to clear blocklist: %w", err)
	}
	return nil
}

func (b *BlockList) Size(ctx context.Context) (int, error) {
	n, err := b.rdb.SCard(ctx, b.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to size blocklist: %w", err)
	}
	return int(n), nil
}

func (b *BlockList) All(ctx context.Context) ([]string, error) {
	hosts, err := b.rdb.SMembers(ctx, b.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list blocklist: %w", err)
	}
	sort.Strings(hosts)
	return hosts, nil
}

// Close releases the Redis connection.
func (b *BlockList) Close() error {
	return b.rdb.Close()
}
