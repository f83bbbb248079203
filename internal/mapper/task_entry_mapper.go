package mapper

import (
	"encoding/json"
	"time"

	"inspection-be/internal/entity"
	"inspection-be/internal/model"

	"gorm.io/datatypes"
)

type TaskEntryMapper struct{}

func NewTaskEntryMapper() *TaskEntryMapper {
	return &TaskEntryMapper{}
}

func (m *TaskEntryMapper) ToEntity(e *model.TaskEntry) *entity.TaskEntry {
	if e == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(e.Metadata) > 0 {
		// Malformed metadata is dropped rather than failing the read
		_ = json.Unmarshal(e.Metadata, &metadata)
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.TaskEntry{
		Id:              e.Id,
		WorkOrderId:     e.WorkOrderId,
		ChecklistTaskId: e.ChecklistTaskId,
		InspectorId:     e.InspectorId,
		Status:          entity.TaskEntryStatus(e.Status),
		Notes:           e.Notes,
		Metadata:        metadata,
		CompletedAt:     e.CompletedAt,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *TaskEntryMapper) ToModel(e *entity.TaskEntry) *model.TaskEntry {
	if e == nil {
		return nil
	}

	var metadata datatypes.JSON
	if len(e.Metadata) > 0 {
		if b, err := json.Marshal(e.Metadata); err == nil {
			metadata = datatypes.JSON(b)
		}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	status := string(e.Status)
	if status == "" {
		status = string(entity.TaskEntryStatusInProgress)
	}

	return &model.TaskEntry{
		Id:              e.Id,
		WorkOrderId:     e.WorkOrderId,
		ChecklistTaskId: e.ChecklistTaskId,
		InspectorId:     e.InspectorId,
		Status:          status,
		Notes:           e.Notes,
		Metadata:        metadata,
		CompletedAt:     e.CompletedAt,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *TaskEntryMapper) ToEntities(entries []*model.TaskEntry) []*entity.TaskEntry {
	entities := make([]*entity.TaskEntry, len(entries))
	for i, e := range entries {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *TaskEntryMapper) MediaToEntity(e *model.EntryMedia) *entity.EntryMedia {
	if e == nil {
		return nil
	}
	return &entity.EntryMedia{
		Id:                e.Id,
		TaskEntryId:       e.TaskEntryId,
		ProviderMessageId: e.ProviderMessageId,
		Url:               e.Url,
		ContentType:       e.ContentType,
		StorageKey:        e.StorageKey,
		CreatedAt:         e.CreatedAt,
	}
}

func (m *TaskEntryMapper) MediaToModel(e *entity.EntryMedia) *model.EntryMedia {
	if e == nil {
		return nil
	}
	return &model.EntryMedia{
		Id:                e.Id,
		TaskEntryId:       e.TaskEntryId,
		ProviderMessageId: e.ProviderMessageId,
		Url:               e.Url,
		ContentType:       e.ContentType,
		StorageKey:        e.StorageKey,
		CreatedAt:         e.CreatedAt,
	}
}

func (m *TaskEntryMapper) MediaToEntities(media []*model.EntryMedia) []*entity.EntryMedia {
	entities := make([]*entity.EntryMedia, len(media))
	for i, e := range media {
		entities[i] = m.MediaToEntity(e)
	}
	return entities
}
