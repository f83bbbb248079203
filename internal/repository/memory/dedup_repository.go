package memory

import (
	"context"
	"time"

	"inspection-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type DedupRepository struct {
	cache *cache.Cache
}

func NewDedupRepository(ttl time.Duration) *DedupRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DedupRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

var _ contract.DedupRepository = (*DedupRepository)(nil)

// MarkProcessed relies on cache.Add failing when the key already exists.
func (r *DedupRepository) MarkProcessed(ctx context.Context, messageId string) (bool, error) {
	if err := r.cache.Add(messageId, struct{}{}, cache.DefaultExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (r *DedupRepository) Forget(ctx context.Context, messageId string) error {
	r.cache.Delete(messageId)
	return nil
}
