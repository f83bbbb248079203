package mapper

import (
	"time"

	"inspection-be/internal/entity"
	"inspection-be/internal/model"
)

type InspectorMapper struct{}

func NewInspectorMapper() *InspectorMapper {
	return &InspectorMapper{}
}

func (m *InspectorMapper) ToEntity(i *model.Inspector) *entity.Inspector {
	if i == nil {
		return nil
	}

	var updatedAt *time.Time
	if !i.UpdatedAt.IsZero() {
		t := i.UpdatedAt
		updatedAt = &t
	}

	return &entity.Inspector{
		Id:        i.Id,
		Name:      i.Name,
		Phone:     i.Phone,
		Email:     i.Email,
		Status:    entity.InspectorStatus(i.Status),
		CreatedAt: i.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *InspectorMapper) ToModel(i *entity.Inspector) *model.Inspector {
	if i == nil {
		return nil
	}

	var updatedAt time.Time
	if i.UpdatedAt != nil {
		updatedAt = *i.UpdatedAt
	}

	status := string(i.Status)
	if status == "" {
		status = string(entity.InspectorStatusActive)
	}

	return &model.Inspector{
		Id:        i.Id,
		Name:      i.Name,
		Phone:     i.Phone,
		Email:     i.Email,
		Status:    status,
		CreatedAt: i.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *InspectorMapper) ToEntities(inspectors []*model.Inspector) []*entity.Inspector {
	entities := make([]*entity.Inspector, len(inspectors))
	for i, n := range inspectors {
		entities[i] = m.ToEntity(n)
	}
	return entities
}
