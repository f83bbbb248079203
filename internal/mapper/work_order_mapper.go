package mapper

import (
	"inspection-be/internal/entity"
	"inspection-be/internal/model"
)

type WorkOrderMapper struct{}

func NewWorkOrderMapper() *WorkOrderMapper {
	return &WorkOrderMapper{}
}

func (m *WorkOrderMapper) ToEntity(w *model.WorkOrder) *entity.WorkOrder {
	if w == nil {
		return nil
	}
	return &entity.WorkOrder{
		Id:          w.Id,
		ContractId:  w.ContractId,
		Title:       w.Title,
		Status:      entity.WorkOrderStatus(w.Status),
		ScheduledAt: w.ScheduledAt,
		CompletedAt: w.CompletedAt,
		CreatedAt:   w.CreatedAt,
	}
}

func (m *WorkOrderMapper) ToModel(w *entity.WorkOrder) *model.WorkOrder {
	if w == nil {
		return nil
	}
	status := string(w.Status)
	if status == "" {
		status = string(entity.WorkOrderStatusOpen)
	}
	return &model.WorkOrder{
		Id:          w.Id,
		ContractId:  w.ContractId,
		Title:       w.Title,
		Status:      status,
		ScheduledAt: w.ScheduledAt,
		CompletedAt: w.CompletedAt,
		CreatedAt:   w.CreatedAt,
	}
}

func (m *WorkOrderMapper) ToEntities(orders []*model.WorkOrder) []*entity.WorkOrder {
	entities := make([]*entity.WorkOrder, len(orders))
	for i, w := range orders {
		entities[i] = m.ToEntity(w)
	}
	return entities
}

func (m *WorkOrderMapper) AssignmentToModel(a *entity.WorkOrderInspector) *model.WorkOrderInspector {
	if a == nil {
		return nil
	}
	return &model.WorkOrderInspector{
		WorkOrderId: a.WorkOrderId,
		InspectorId: a.InspectorId,
		Position:    a.Position,
		CreatedAt:   a.CreatedAt,
	}
}

func (m *WorkOrderMapper) LocationToEntity(l *model.Location) *entity.Location {
	if l == nil {
		return nil
	}
	return &entity.Location{
		Id:          l.Id,
		WorkOrderId: l.WorkOrderId,
		Name:        l.Name,
		OrderIndex:  l.OrderIndex,
	}
}

func (m *WorkOrderMapper) LocationToModel(l *entity.Location) *model.Location {
	if l == nil {
		return nil
	}
	return &model.Location{
		Id:          l.Id,
		WorkOrderId: l.WorkOrderId,
		Name:        l.Name,
		OrderIndex:  l.OrderIndex,
	}
}

func (m *WorkOrderMapper) LocationsToEntities(locations []*model.Location) []*entity.Location {
	entities := make([]*entity.Location, len(locations))
	for i, l := range locations {
		entities[i] = m.LocationToEntity(l)
	}
	return entities
}
