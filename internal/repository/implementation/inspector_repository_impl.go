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

type InspectorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InspectorMapper
}

func NewInspectorRepository(db *gorm.DB) contract.InspectorRepository {
	return &InspectorRepositoryImpl{
		db:     db,
		mapper: mapper.NewInspectorMapper(),
	}
}

func (r *InspectorRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *InspectorRepositoryImpl) Create(ctx context.Context, inspector *entity.Inspector) error {
	if inspector.Id == uuid.Nil {
		inspector.Id = uuid.New()
	}
	m := r.mapper.ToModel(inspector)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*inspector = *r.mapper.ToEntity(m)
	return nil
}

func (r *InspectorRepositoryImpl) Update(ctx context.Context, inspector *entity.Inspector) error {
	m := r.mapper.ToModel(inspector)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*inspector = *r.mapper.ToEntity(m)
	return nil
}

func (r *InspectorRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Inspector, error) {
	var m model.Inspector
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InspectorRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Inspector, error) {
	var models []*model.Inspector
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *InspectorRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*entity.Inspector, error) {
	return r.FindOne(ctx, specification.Filter("phone", phone))
}

func (r *InspectorRepositoryImpl) FindAssignedInspectors(ctx context.Context, workOrderId uuid.UUID) ([]*entity.Inspector, error) {
	var models []*model.Inspector
	err := r.db.WithContext(ctx).
		Model(&model.Inspector{}).
		Select("inspectors.*").
		Joins("JOIN work_order_inspectors woi ON woi.inspector_id = inspectors.id").
		Where("woi.work_order_id = ?", workOrderId).
		Order("woi.position ASC").
		Order("woi.created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
