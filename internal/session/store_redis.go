// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces session keys so the portal can share a Redis
// instance with other tooling.
const redisKeyPrefix = "portal:session:"

// RedisStore implements Store on Redis.
//
// Selected via SESSION_REDIS_URL for operators who run the portal on more
// than one machine and want the session to follow them.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

/*
Get retrieves the value stored under key.

Description: Absence (redis.Nil) is reported via the boolean, not the error.

Parameters:
  - ctx: context.Context
  - key: string

Returns:
  - string: Stored value
  - bool: Whether the key was present
  - error: Connectivity errors
*/
func (store *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {

	// Get the value from Redis
	value, err := store.client.Get(ctx, redisKeyPrefix+key).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	// Return the value
	return value, true, nil
}

/*
Set stores value under key without expiry.

Parameters:
  - ctx: context.Context
  - key: string
  - value: string

Returns:
  - error: Storage failures
*/
func (store *RedisStore) Set(ctx context.Context, key string, value string) error {

	// Session keys never expire on their own; logout deletes them.
	if err := store.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Delete removes key from Redis.

Parameters:
  - ctx: context.Context
  - key: string

Returns:
  - error: Deletion failures
*/
func (store *RedisStore) Delete(ctx context.Context, key string) error {

	// Delete the key from Redis
	if err := store.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}

	// Return nil on success
	return nil
}
