// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each document as a string key. SET replaces the value
// atomically, which is the only guarantee the full-rewrite policy needs.
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// RedisOptions configures NewRedisBackend.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisBackend connects to redis and verifies the connection with PING.
func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisBackendWithClient(client, opts.KeyPrefix), nil
}

// NewRedisBackendWithClient wraps an existing client. Close closes it.
func NewRedisBackendWithClient(client redis.UniversalClient, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

// Get implements Backend.
func (b *RedisBackend) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.prefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

// Put implements Backend.
func (b *RedisBackend) Put(ctx context.Context, name string, data []byte) error {
	return b.client.Set(ctx, b.prefix+name, data, 0).Err()
}

// Delete implements Backend.
func (b *RedisBackend) Delete(ctx context.Context, name string) error {
	return b.client.Del(ctx, b.prefix+name).Err()
}

// Close implements Backend.
func (b *RedisBackend) Close() error { return b.client.Close() }

// Kind implements Backend.
func (b *RedisBackend) Kind() string { return "redis" }
