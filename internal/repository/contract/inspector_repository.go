// FILE: internal/repository/contract/inspector_repository.go
package contract

import (
	"context"

	"inspection-be/internal/entity"
	"inspection-be/internal/repository/specification"

	"github.com/google/uuid"
)

type InspectorRepository interface {
	Create(ctx context.Context, inspector *entity.Inspector) error
	Update(ctx context.Context, inspector *entity.Inspector) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Inspector, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Inspector, error)
	// FindByPhone returns nil, nil when no inspector has the exact phone.
	FindByPhone(ctx context.Context, phone string) (*entity.Inspector, error)
	// FindAssignedInspectors returns the work order's inspectors by position, then assignment time.
	FindAssignedInspectors(ctx context.Context, workOrderId uuid.UUID) ([]*entity.Inspector, error)
}
