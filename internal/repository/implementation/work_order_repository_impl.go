package implementation

import (
	"context"
	"errors"
	"time"

	"inspection-be/internal/entity"
	"inspection-be/internal/mapper"
	"inspection-be/internal/model"
	"inspection-be/internal/repository/contract"
	"inspection-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkOrderRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkOrderMapper
}

func NewWorkOrderRepository(db *gorm.DB) contract.WorkOrderRepository {
	return &WorkOrderRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkOrderMapper(),
	}
}

func (r *WorkOrderRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WorkOrderRepositoryImpl) Create(ctx context.Context, workOrder *entity.WorkOrder) error {
	if workOrder.Id == uuid.Nil {
		workOrder.Id = uuid.New()
	}
	m := r.mapper.ToModel(workOrder)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*workOrder = *r.mapper.ToEntity(m)
	return nil
}

func (r *WorkOrderRepositoryImpl) Update(ctx context.Context, workOrder *entity.WorkOrder) error {
	m := r.mapper.ToModel(workOrder)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*workOrder = *r.mapper.ToEntity(m)
	return nil
}

func (r *WorkOrderRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkOrder, error) {
	var m model.WorkOrder
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WorkOrderRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkOrder, error) {
	var models []*model.WorkOrder
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *WorkOrderRepositoryImpl) FindOpenByInspector(ctx context.Context, inspectorId uuid.UUID) ([]*entity.WorkOrder, error) {
	statuses := make([]string, 0, len(entity.OpenWorkOrderStatuses))
	for _, s := range entity.OpenWorkOrderStatuses {
		statuses = append(statuses, string(s))
	}
	return r.FindAll(ctx,
		specification.AssignedTo{InspectorID: inspectorId},
		specification.ByStatuses{Statuses: statuses},
		specification.OrderBy{Field: "created_at"},
	)
}

func (r *WorkOrderRepositoryImpl) AssignInspector(ctx context.Context, assignment *entity.WorkOrderInspector) error {
	return r.db.WithContext(ctx).Create(r.mapper.AssignmentToModel(assignment)).Error
}

func (r *WorkOrderRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.WorkOrderStatus) error {
	updates := map[string]interface{}{"status": string(status)}
	if status == entity.WorkOrderStatusCompleted {
		updates["completed_at"] = time.Now()
	}
	return r.db.WithContext(ctx).
		Model(&model.WorkOrder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

type LocationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkOrderMapper
}

func NewLocationRepository(db *gorm.DB) contract.LocationRepository {
	return &LocationRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkOrderMapper(),
	}
}

func (r *LocationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LocationRepositoryImpl) Create(ctx context.Context, location *entity.Location) error {
	if location.Id == uuid.Nil {
		location.Id = uuid.New()
	}
	m := r.mapper.LocationToModel(location)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*location = *r.mapper.LocationToEntity(m)
	return nil
}

func (r *LocationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Location, error) {
	var m model.Location
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.LocationToEntity(&m), nil
}

func (r *LocationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Location, error) {
	var models []*model.Location
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.LocationsToEntities(models), nil
}
