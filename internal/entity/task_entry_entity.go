// FILE: internal/entity/task_entry_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type TaskEntryStatus string

const (
	TaskEntryStatusInProgress TaskEntryStatus = "IN_PROGRESS"
	TaskEntryStatusCompleted  TaskEntryStatus = "COMPLETED"
)

// TaskEntry is the evidence record for one checklist task within one work
// order. There is at most one per (work order, task).
type TaskEntry struct {
	Id              uuid.UUID
	WorkOrderId     uuid.UUID
	ChecklistTaskId uuid.UUID
	InspectorId     uuid.UUID
	Status          TaskEntryStatus
	Notes           string
	Metadata        map[string]interface{}
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

type EntryMedia struct {
	Id                uuid.UUID
	TaskEntryId       uuid.UUID
	ProviderMessageId string
	Url               string
	ContentType       string
	StorageKey        string
	CreatedAt         time.Time
}
