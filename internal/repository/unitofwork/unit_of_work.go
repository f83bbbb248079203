package unitofwork

import (
	"context"

	"inspection-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	InspectorRepository() contract.InspectorRepository
	WorkOrderRepository() contract.WorkOrderRepository
	LocationRepository() contract.LocationRepository
	ChecklistRepository() contract.ChecklistRepository
	TaskEntryRepository() contract.TaskEntryRepository
}
