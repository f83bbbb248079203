// FILE: internal/model/checklist_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Contract struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientName      string    `gorm:"type:varchar(255);not null"`
	PropertyAddress string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (Contract) TableName() string {
	return "contracts"
}

type Checklist struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractId uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(255);not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Checklist) TableName() string {
	return "checklists"
}

type ChecklistItem struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChecklistId uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	OrderIndex  int       `gorm:"not null;default:0"`
}

func (ChecklistItem) TableName() string {
	return "checklist_items"
}

type ChecklistTask struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChecklistItemId uuid.UUID `gorm:"type:uuid;not null;index"`
	Name            string    `gorm:"type:varchar(255);not null"`
	OrderIndex      int       `gorm:"not null;default:0"`
}

func (ChecklistTask) TableName() string {
	return "checklist_tasks"
}
