// Package rediskv stores conversation sessions and processed message ids in
// Redis so several webhook replicas can share them.
package rediskv

import (
	"context"
	"fmt"
	"time"

	"inspection-be/internal/repository/contract"
	"inspection-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "inspection:session:"

// SessionRepository keeps one hash per session. Merges run inside
// MULTI/EXEC so a concurrent merge never interleaves with another.
type SessionRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewSessionRepository(client redis.UniversalClient, ttl time.Duration) *SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func sessionKey(key string) string {
	return sessionKeyPrefix + key
}

func (r *SessionRepository) Get(ctx context.Context, key string) (*store.Session, bool, error) {
	hash, err := r.client.HGetAll(ctx, sessionKey(key)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}
	if len(hash) == 0 {
		return nil, false, nil
	}
	return store.FromHash(key, hash), true, nil
}

func (r *SessionRepository) Merge(ctx context.Context, key string, update store.SessionUpdate) (*store.Session, error) {
	rk := sessionKey(key)

	values := update.Values()
	values[store.FieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339Nano)

	fields := make([]interface{}, 0, len(values)*2)
	for field, value := range values {
		fields = append(fields, field, value)
	}

	var hgetall *redis.MapStringStringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(update.Clear) > 0 {
			pipe.HDel(ctx, rk, update.Clear...)
		}
		pipe.HSet(ctx, rk, fields...)
		if r.ttl > 0 {
			pipe.Expire(ctx, rk, r.ttl)
		}
		hgetall = pipe.HGetAll(ctx, rk)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to merge session: %w", err)
	}

	return store.FromHash(key, hgetall.Val()), nil
}

func (r *SessionRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, sessionKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return n > 0, nil
}
