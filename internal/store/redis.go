// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

const defaultKeyPrefix = "oxide:data:"

// RedisStore keeps each object as a string value under prefix+name.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the redis server at url and verifies the connection.
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, oops.Code("INVALID_STORE_CONFIG").With("driver", DriverRedis).Wrap(err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // ping error takes precedence
		return nil, oops.Code("STORE_OPEN_FAILED").With("driver", DriverRedis).Wrap(err)
	}

	return NewRedisStoreWithClient(client, prefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

// ReadObject implements DataStore.
func (s *RedisStore) ReadObject(ctx context.Context, name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}

	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return oops.Code("READ_FAILED").With("name", name).With("key", s.key(name)).Wrap(err)
	}
	return decode(name, data, v)
}

// WriteObject implements DataStore. Objects never expire.
func (s *RedisStore) WriteObject(ctx context.Context, name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}
	data, err := encode(name, v)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return oops.Code("WRITE_FAILED").With("name", name).With("key", s.key(name)).Wrap(err)
	}
	return nil
}

// Close implements DataStore.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
