package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis document backend.
type RedisOptions struct {
	Addr        string
	Prefix      string
	DialTimeout time.Duration
}

// RedisDocs stores each document as a JSON string at <prefix><path>.
type RedisDocs struct {
	rdb    *goredis.Client
	prefix string
}

// OpenRedis connects to Redis and verifies the connection with a ping.
func OpenRedis(ctx context.Context, opts RedisOptions) (*RedisDocs, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		DialTimeout: opts.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisDocs{rdb: rdb, prefix: opts.Prefix}, nil
}

// Close releases the Redis connection pool.
func (r *RedisDocs) Close() error {
	return r.rdb.Close()
}

func (r *RedisDocs) key(path string) (string, error) {
	p, err := CleanPath(path)
	if err != nil {
		return "", err
	}
	return r.prefix + p, nil
}

func (r *RedisDocs) Write(ctx context.Context, path string, doc any) error {
	k, err := r.key(path)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", path, err)
	}
	if err := r.rdb.Set(ctx, k, raw, 0).Err(); err != nil {
		return fmt.Errorf("write document %s: %w", path, err)
	}
	return nil
}

func (r *RedisDocs) Read(ctx context.Context, path string, v any) error {
	k, err := r.key(path)
	if err != nil {
		return err
	}
	raw, err := r.rdb.Get(ctx, k).Bytes()
	if errors.Is(err, goredis.Nil) {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read document %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document %s: %w", path, err)
	}
	return nil
}

func (r *RedisDocs) List(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.TrimLeft(strings.TrimSpace(prefix), "/")
	match := escapeGlob(r.prefix+prefix) + "*"

	var paths []string
	iter := r.rdb.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		paths = append(paths, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// escapeGlob quotes the characters SCAN MATCH treats as patterns.
func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
