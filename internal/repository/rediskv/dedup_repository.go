package rediskv

import (
	"context"
	"fmt"
	"time"

	"inspection-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const dedupKeyPrefix = "inspection:processed:"

type DedupRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewDedupRepository(client redis.UniversalClient, ttl time.Duration) *DedupRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DedupRepository{client: client, ttl: ttl}
}

var _ contract.DedupRepository = (*DedupRepository)(nil)

func (r *DedupRepository) MarkProcessed(ctx context.Context, messageId string) (bool, error) {
	ok, err := r.client.SetNX(ctx, dedupKeyPrefix+messageId, 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message processed: %w", err)
	}
	return ok, nil
}

func (r *DedupRepository) Forget(ctx context.Context, messageId string) error {
	if err := r.client.Del(ctx, dedupKeyPrefix+messageId).Err(); err != nil {
		return fmt.Errorf("failed to forget message: %w", err)
	}
	return nil
}
