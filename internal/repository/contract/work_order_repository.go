// FILE: internal/repository/contract/work_order_repository.go
package contract

import (
	"context"

	"inspection-be/internal/entity"
	"inspection-be/internal/repository/specification"

	"github.com/google/uuid"
)

type WorkOrderRepository interface {
	Create(ctx context.Context, workOrder *entity.WorkOrder) error
	Update(ctx context.Context, workOrder *entity.WorkOrder) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkOrder, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkOrder, error)
	FindOpenByInspector(ctx context.Context, inspectorId uuid.UUID) ([]*entity.WorkOrder, error)
	AssignInspector(ctx context.Context, assignment *entity.WorkOrderInspector) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.WorkOrderStatus) error
}

type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Location, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Location, error)
}
