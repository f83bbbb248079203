package memory

import (
	"context"
	"time"

	"inspection-be/internal/repository/contract"
	"inspection-be/pkg/store"
	"inspection-be/pkg/utils"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
	locks *utils.KeyedMutex
}

// NewSessionRepository keeps sessions in process memory. ttl <= 0 disables
// expiry.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	// Purge expired items every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
		locks: utils.NewKeyedMutex(),
	}
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Get(ctx context.Context, key string) (*store.Session, bool, error) {
	if x, found := r.cache.Get(key); found {
		return x.(*store.Session).Clone(), true, nil
	}
	return nil, false, nil
}

func (r *SessionRepository) Merge(ctx context.Context, key string, update store.SessionUpdate) (*store.Session, error) {
	unlock := r.locks.Lock(key)
	defer unlock()

	session := store.NewSession(key)
	if x, found := r.cache.Get(key); found {
		session = x.(*store.Session).Clone()
	}

	session.Apply(update)
	session.UpdatedAt = time.Now()

	r.cache.Set(key, session, cache.DefaultExpiration)
	return session.Clone(), nil
}

func (r *SessionRepository) Delete(ctx context.Context, key string) error {
	unlock := r.locks.Lock(key)
	defer unlock()

	r.cache.Delete(key)
	return nil
}

func (r *SessionRepository) Has(ctx context.Context, key string) (bool, error) {
	_, found := r.cache.Get(key)
	return found, nil
}
