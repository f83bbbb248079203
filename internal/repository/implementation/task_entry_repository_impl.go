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
	"gorm.io/gorm/clause"
)

type TaskEntryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TaskEntryMapper
}

func NewTaskEntryRepository(db *gorm.DB) contract.TaskEntryRepository {
	return &TaskEntryRepositoryImpl{
		db:     db,
		mapper: mapper.NewTaskEntryMapper(),
	}
}

func (r *TaskEntryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TaskEntryRepositoryImpl) Create(ctx context.Context, entry *entity.TaskEntry) error {
	if entry.Id == uuid.Nil {
		entry.Id = uuid.New()
	}
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *TaskEntryRepositoryImpl) Update(ctx context.Context, entry *entity.TaskEntry) error {
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *TaskEntryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TaskEntry, error) {
	var m model.TaskEntry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TaskEntryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TaskEntry, error) {
	var models []*model.TaskEntry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *TaskEntryRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.TaskEntry{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TaskEntryRepositoryImpl) CompletedTaskIDs(ctx context.Context, workOrderId uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.TaskEntry{}).
		Where("work_order_id = ? AND status = ?", workOrderId, string(entity.TaskEntryStatusCompleted)).
		Pluck("checklist_task_id", &ids).Error
	if err != nil {
		return nil, err
	}

	done := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}
	return done, nil
}

func (r *TaskEntryRepositoryImpl) AddMedia(ctx context.Context, media *entity.EntryMedia) (bool, error) {
	if media.Id == uuid.Nil {
		media.Id = uuid.New()
	}
	m := r.mapper.MediaToModel(media)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_message_id"}},
			DoNothing: true,
		}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	*media = *r.mapper.MediaToEntity(m)
	return true, nil
}

func (r *TaskEntryRepositoryImpl) FindMedia(ctx context.Context, specs ...specification.Specification) ([]*entity.EntryMedia, error) {
	var models []*model.EntryMedia
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.MediaToEntities(models), nil
}
