package implementation

import (
	"context"
	"errors"

	"inspection-be/internal/entity"
	"inspection-be/internal/mapper"
	"inspection-be/internal/model"
	"inspection-be/internal/repository/contract"
	"inspection-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChecklistRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChecklistMapper
}

func NewChecklistRepository(db *gorm.DB) contract.ChecklistRepository {
	return &ChecklistRepositoryImpl{
		db:     db,
		mapper: mapper.NewChecklistMapper(),
	}
}

func (r *ChecklistRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChecklistRepositoryImpl) CreateContract(ctx context.Context, c *entity.Contract) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	m := r.mapper.ContractToModel(c)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*c = *r.mapper.ContractToEntity(m)
	return nil
}

func (r *ChecklistRepositoryImpl) CreateChecklist(ctx context.Context, c *entity.Checklist) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	m := r.mapper.ChecklistToModel(c)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*c = *r.mapper.ChecklistToEntity(m)
	return nil
}

func (r *ChecklistRepositoryImpl) CreateItem(ctx context.Context, item *entity.ChecklistItem) error {
	if item.Id == uuid.Nil {
		item.Id = uuid.New()
	}
	m := r.mapper.ItemToModel(item)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*item = *r.mapper.ItemToEntity(m)
	return nil
}

func (r *ChecklistRepositoryImpl) CreateTask(ctx context.Context, task *entity.ChecklistTask) error {
	if task.Id == uuid.Nil {
		task.Id = uuid.New()
	}
	m := r.mapper.TaskToModel(task)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*task = *r.mapper.TaskToEntity(m)
	return nil
}

func (r *ChecklistRepositoryImpl) FindChecklists(ctx context.Context, specs ...specification.Specification) ([]*entity.Checklist, error) {
	var models []*model.Checklist
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChecklistsToEntities(models), nil
}

func (r *ChecklistRepositoryImpl) FindItems(ctx context.Context, specs ...specification.Specification) ([]*entity.ChecklistItem, error) {
	var models []*model.ChecklistItem
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ItemsToEntities(models), nil
}

func (r *ChecklistRepositoryImpl) FindTasks(ctx context.Context, specs ...specification.Specification) ([]*entity.ChecklistTask, error) {
	var models []*model.ChecklistTask
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.TasksToEntities(models), nil
}

func (r *ChecklistRepositoryImpl) FindTask(ctx context.Context, specs ...specification.Specification) (*entity.ChecklistTask, error) {
	var m model.ChecklistTask
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TaskToEntity(&m), nil
}

func (r *ChecklistRepositoryImpl) FindItemsByContract(ctx context.Context, contractId uuid.UUID) ([]*entity.ChecklistItem, error) {
	var models []*model.ChecklistItem
	err := r.db.WithContext(ctx).
		Model(&model.ChecklistItem{}).
		Select("checklist_items.*").
		Joins("JOIN checklists c ON c.id = checklist_items.checklist_id").
		Where("c.contract_id = ?", contractId).
		Order("c.created_at ASC").
		Order("checklist_items.order_index ASC").
		Order("checklist_items.id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ItemsToEntities(models), nil
}
