// FILE: internal/model/work_order_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type WorkOrder struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ContractId  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title       string     `gorm:"type:varchar(255);not null"`
	Status      string     `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	ScheduledAt *time.Time `gorm:"type:timestamp"`
	CompletedAt *time.Time `gorm:"type:timestamp"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
}

func (WorkOrder) TableName() string {
	return "work_orders"
}

type WorkOrderInspector struct {
	WorkOrderId uuid.UUID `gorm:"type:uuid;primaryKey"`
	InspectorId uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Position    int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (WorkOrderInspector) TableName() string {
	return "work_order_inspectors"
}

type Location struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkOrderId uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	OrderIndex  int       `gorm:"not null;default:0"`
}

func (Location) TableName() string {
	return "locations"
}
