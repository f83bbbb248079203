// FILE: internal/entity/checklist_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type Contract struct {
	Id              uuid.UUID
	ClientName      string
	PropertyAddress string
	CreatedAt       time.Time
}

type Checklist struct {
	Id         uuid.UUID
	ContractId uuid.UUID
	Name       string
	CreatedAt  time.Time
}

// ChecklistItem is a named area of a checklist. It is matched to a
// work order location by normalized name.
type ChecklistItem struct {
	Id          uuid.UUID
	ChecklistId uuid.UUID
	Name        string
	OrderIndex  int
}

type ChecklistTask struct {
	Id              uuid.UUID
	ChecklistItemId uuid.UUID
	Name            string
	OrderIndex      int
}
