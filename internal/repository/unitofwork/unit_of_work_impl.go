package unitofwork

import (
	"context"
	"fmt"

	"inspection-be/internal/repository/contract"
	"inspection-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // nil outside a transaction
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) InspectorRepository() contract.InspectorRepository {
	return implementation.NewInspectorRepository(u.getDB())
}

func (u *UnitOfWorkImpl) WorkOrderRepository() contract.WorkOrderRepository {
	return implementation.NewWorkOrderRepository(u.getDB())
}

func (u *UnitOfWorkImpl) LocationRepository() contract.LocationRepository {
	return implementation.NewLocationRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ChecklistRepository() contract.ChecklistRepository {
	return implementation.NewChecklistRepository(u.getDB())
}

func (u *UnitOfWorkImpl) TaskEntryRepository() contract.TaskEntryRepository {
	return implementation.NewTaskEntryRepository(u.getDB())
}
