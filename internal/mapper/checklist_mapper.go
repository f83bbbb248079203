package mapper

import (
	"inspection-be/internal/entity"
	"inspection-be/internal/model"
)

type ChecklistMapper struct{}

func NewChecklistMapper() *ChecklistMapper {
	return &ChecklistMapper{}
}

func (m *ChecklistMapper) ContractToEntity(c *model.Contract) *entity.Contract {
	if c == nil {
		return nil
	}
	return &entity.Contract{
		Id:              c.Id,
		ClientName:      c.ClientName,
		PropertyAddress: c.PropertyAddress,
		CreatedAt:       c.CreatedAt,
	}
}

func (m *ChecklistMapper) ContractToModel(c *entity.Contract) *model.Contract {
	if c == nil {
		return nil
	}
	return &model.Contract{
		Id:              c.Id,
		ClientName:      c.ClientName,
		PropertyAddress: c.PropertyAddress,
		CreatedAt:       c.CreatedAt,
	}
}

func (m *ChecklistMapper) ChecklistToEntity(c *model.Checklist) *entity.Checklist {
	if c == nil {
		return nil
	}
	return &entity.Checklist{
		Id:         c.Id,
		ContractId: c.ContractId,
		Name:       c.Name,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ChecklistMapper) ChecklistToModel(c *entity.Checklist) *model.Checklist {
	if c == nil {
		return nil
	}
	return &model.Checklist{
		Id:         c.Id,
		ContractId: c.ContractId,
		Name:       c.Name,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ChecklistMapper) ChecklistsToEntities(checklists []*model.Checklist) []*entity.Checklist {
	entities := make([]*entity.Checklist, len(checklists))
	for i, c := range checklists {
		entities[i] = m.ChecklistToEntity(c)
	}
	return entities
}

func (m *ChecklistMapper) ItemToEntity(i *model.ChecklistItem) *entity.ChecklistItem {
	if i == nil {
		return nil
	}
	return &entity.ChecklistItem{
		Id:          i.Id,
		ChecklistId: i.ChecklistId,
		Name:        i.Name,
		OrderIndex:  i.OrderIndex,
	}
}

func (m *ChecklistMapper) ItemToModel(i *entity.ChecklistItem) *model.ChecklistItem {
	if i == nil {
		return nil
	}
	return &model.ChecklistItem{
		Id:          i.Id,
		ChecklistId: i.ChecklistId,
		Name:        i.Name,
		OrderIndex:  i.OrderIndex,
	}
}

func (m *ChecklistMapper) ItemsToEntities(items []*model.ChecklistItem) []*entity.ChecklistItem {
	entities := make([]*entity.ChecklistItem, len(items))
	for i, it := range items {
		entities[i] = m.ItemToEntity(it)
	}
	return entities
}

func (m *ChecklistMapper) TaskToEntity(t *model.ChecklistTask) *entity.ChecklistTask {
	if t == nil {
		return nil
	}
	return &entity.ChecklistTask{
		Id:              t.Id,
		ChecklistItemId: t.ChecklistItemId,
		Name:            t.Name,
		OrderIndex:      t.OrderIndex,
	}
}

func (m *ChecklistMapper) TaskToModel(t *entity.ChecklistTask) *model.ChecklistTask {
	if t == nil {
		return nil
	}
	return &model.ChecklistTask{
		Id:              t.Id,
		ChecklistItemId: t.ChecklistItemId,
		Name:            t.Name,
		OrderIndex:      t.OrderIndex,
	}
}

func (m *ChecklistMapper) TasksToEntities(tasks []*model.ChecklistTask) []*entity.ChecklistTask {
	entities := make([]*entity.ChecklistTask, len(tasks))
	for i, t := range tasks {
		entities[i] = m.TaskToEntity(t)
	}
	return entities
}
