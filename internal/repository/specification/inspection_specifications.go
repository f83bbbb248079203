package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByWorkOrderID struct {
	WorkOrderID uuid.UUID
}

func (s ByWorkOrderID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("work_order_id = ?", s.WorkOrderID)
}

type ByChecklistItemID struct {
	ChecklistItemID uuid.UUID
}

func (s ByChecklistItemID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("checklist_item_id = ?", s.ChecklistItemID)
}

type ByChecklistItemIDs struct {
	ChecklistItemIDs []uuid.UUID
}

func (s ByChecklistItemIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("checklist_item_id IN ?", s.ChecklistItemIDs)
}

type ByChecklistTaskID struct {
	ChecklistTaskID uuid.UUID
}

func (s ByChecklistTaskID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("checklist_task_id = ?", s.ChecklistTaskID)
}

type ByTaskEntryID struct {
	TaskEntryID uuid.UUID
}

func (s ByTaskEntryID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("task_entry_id = ?", s.TaskEntryID)
}

type ByStatuses struct {
	Statuses []string
}

func (s ByStatuses) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

// AssignedTo restricts work orders to those the inspector is assigned to.
type AssignedTo struct {
	InspectorID uuid.UUID
}

func (s AssignedTo) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN (SELECT work_order_id FROM work_order_inspectors WHERE inspector_id = ?)", s.InspectorID)
}

// Ordered sorts by order_index then id, the canonical listing order for
// locations, checklist items and tasks.
type Ordered struct{}

func (s Ordered) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC").Order("id ASC")
}
