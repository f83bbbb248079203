// FILE: internal/repository/contract/checklist_repository.go
package contract

import (
	"context"

	"inspection-be/internal/entity"
	"inspection-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ChecklistRepository covers contracts and their checklist tree. The tree is
// read mostly; writes exist for seeding and tests.
type ChecklistRepository interface {
	CreateContract(ctx context.Context, contract *entity.Contract) error
	CreateChecklist(ctx context.Context, checklist *entity.Checklist) error
	CreateItem(ctx context.Context, item *entity.ChecklistItem) error
	CreateTask(ctx context.Context, task *entity.ChecklistTask) error

	FindChecklists(ctx context.Context, specs ...specification.Specification) ([]*entity.Checklist, error)
	FindItems(ctx context.Context, specs ...specification.Specification) ([]*entity.ChecklistItem, error)
	FindTasks(ctx context.Context, specs ...specification.Specification) ([]*entity.ChecklistTask, error)
	FindTask(ctx context.Context, specs ...specification.Specification) (*entity.ChecklistTask, error)
	// FindItemsByContract returns every item of every checklist of the contract,
	// checklists by creation then items by order_index.
	FindItemsByContract(ctx context.Context, contractId uuid.UUID) ([]*entity.ChecklistItem, error)
}
