// FILE: internal/entity/work_order_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type WorkOrderStatus string

const (
	WorkOrderStatusOpen       WorkOrderStatus = "OPEN"
	WorkOrderStatusInProgress WorkOrderStatus = "IN_PROGRESS"
	WorkOrderStatusCompleted  WorkOrderStatus = "COMPLETED"
	WorkOrderStatusCancelled  WorkOrderStatus = "CANCELLED"
)

// OpenWorkOrderStatuses are the statuses an inspector can still report against.
var OpenWorkOrderStatuses = []WorkOrderStatus{WorkOrderStatusOpen, WorkOrderStatusInProgress}

type WorkOrder struct {
	Id          uuid.UUID
	ContractId  uuid.UUID
	Title       string
	Status      WorkOrderStatus
	ScheduledAt *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
}

func (w *WorkOrder) IsOpen() bool {
	return w.Status == WorkOrderStatusOpen || w.Status == WorkOrderStatusInProgress
}

type WorkOrderInspector struct {
	WorkOrderId uuid.UUID
	InspectorId uuid.UUID
	Position    int
	CreatedAt   time.Time
}

type Location struct {
	Id          uuid.UUID
	WorkOrderId uuid.UUID
	Name        string
	OrderIndex  int
}
