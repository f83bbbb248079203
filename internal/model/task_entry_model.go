// FILE: internal/model/task_entry_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TaskEntry struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	WorkOrderId     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_task_entries_work_order_task"`
	ChecklistTaskId uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_task_entries_work_order_task"`
	InspectorId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status          string         `gorm:"type:varchar(20);not null;default:'IN_PROGRESS'"`
	Notes           string         `gorm:"type:text"`
	Metadata        datatypes.JSON `gorm:"type:jsonb"`
	CompletedAt     *time.Time     `gorm:"type:timestamp"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

func (TaskEntry) TableName() string {
	return "task_entries"
}

type EntryMedia struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaskEntryId       uuid.UUID `gorm:"type:uuid;not null;index"`
	ProviderMessageId string    `gorm:"type:varchar(255);uniqueIndex"`
	Url               string    `gorm:"type:text;not null"`
	ContentType       string    `gorm:"type:varchar(100)"`
	StorageKey        string    `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (EntryMedia) TableName() string {
	return "entry_media"
}

// All returns every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Inspector{},
		&Contract{},
		&Checklist{},
		&ChecklistItem{},
		&ChecklistTask{},
		&WorkOrder{},
		&WorkOrderInspector{},
		&Location{},
		&TaskEntry{},
		&EntryMedia{},
	}
}
