// FILE: internal/repository/contract/task_entry_repository.go
package contract

import (
	"context"

	"inspection-be/internal/entity"
	"inspection-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TaskEntryRepository interface {
	Create(ctx context.Context, entry *entity.TaskEntry) error
	Update(ctx context.Context, entry *entity.TaskEntry) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TaskEntry, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TaskEntry, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// CompletedTaskIDs returns the ids of tasks with a COMPLETED entry in the work order.
	CompletedTaskIDs(ctx context.Context, workOrderId uuid.UUID) (map[uuid.UUID]bool, error)
	// AddMedia stores the media row; created is false when the provider
	// message id was already recorded.
	AddMedia(ctx context.Context, media *entity.EntryMedia) (created bool, err error)
	FindMedia(ctx context.Context, specs ...specification.Specification) ([]*entity.EntryMedia, error)
}
