// FILE: internal/repository/contract/session_repository.go
package contract

import (
	"context"

	"inspection-be/pkg/store"
)

// SessionRepository keeps per-conversation state keyed by the normalized
// sender phone. Merge is atomic per key.
type SessionRepository interface {
	Get(ctx context.Context, key string) (*store.Session, bool, error)
	Merge(ctx context.Context, key string, update store.SessionUpdate) (*store.Session, error)
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
}

// DedupRepository remembers processed provider message ids.
type DedupRepository interface {
	// MarkProcessed returns true the first time an id is seen.
	MarkProcessed(ctx context.Context, messageId string) (bool, error)
	// Forget releases an id so a redelivery is processed again.
	Forget(ctx context.Context, messageId string) error
}
