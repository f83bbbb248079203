// FILE: internal/entity/inspector_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type InspectorStatus string

const (
	InspectorStatusActive   InspectorStatus = "active"
	InspectorStatusInactive InspectorStatus = "inactive"
)

type Inspector struct {
	Id        uuid.UUID
	Name      string
	Phone     string
	Email     string
	Status    InspectorStatus
	CreatedAt time.Time
	UpdatedAt *time.Time
}
