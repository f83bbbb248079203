// Package testdb opens throwaway sqlite databases migrated with the
// inspection schema, plus a canonical fixture used across package tests.
package testdb

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"inspection-be/internal/entity"
	"inspection-be/internal/model"
	"inspection-be/internal/repository/implementation"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", filepath.Join(t.TempDir(), "inspection.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(model.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Fixture is one inspector assigned to one open work order with three
// locations: Kitchen (2 tasks), Bedroom (1 task) and Living Room, which has
// no matching checklist item.
type Fixture struct {
	Inspector *entity.Inspector
	Contract  *entity.Contract
	Checklist *entity.Checklist
	WorkOrder *entity.WorkOrder

	Kitchen    *entity.Location
	Bedroom    *entity.Location
	LivingRoom *entity.Location

	KitchenItem *entity.ChecklistItem
	BedroomItem *entity.ChecklistItem

	CheckSink    *entity.ChecklistTask
	CheckStove   *entity.ChecklistTask
	CheckWindows *entity.ChecklistTask
}

const FixturePhone = "+6591234567"

func Seed(t testing.TB, db *gorm.DB) *Fixture {
	t.Helper()
	ctx := context.Background()

	inspectors := implementation.NewInspectorRepository(db)
	workOrders := implementation.NewWorkOrderRepository(db)
	locations := implementation.NewLocationRepository(db)
	checklists := implementation.NewChecklistRepository(db)

	f := &Fixture{}

	f.Inspector = &entity.Inspector{Name: "Ana Lim", Phone: FixturePhone, Status: entity.InspectorStatusActive}
	require.NoError(t, inspectors.Create(ctx, f.Inspector))

	f.Contract = &entity.Contract{ClientName: "Harbour Residences", PropertyAddress: "12 Marina Way"}
	require.NoError(t, checklists.CreateContract(ctx, f.Contract))

	f.Checklist = &entity.Checklist{ContractId: f.Contract.Id, Name: "Handover"}
	require.NoError(t, checklists.CreateChecklist(ctx, f.Checklist))

	f.KitchenItem = &entity.ChecklistItem{ChecklistId: f.Checklist.Id, Name: "Kitchen", OrderIndex: 1}
	f.BedroomItem = &entity.ChecklistItem{ChecklistId: f.Checklist.Id, Name: "Bedroom", OrderIndex: 2}
	require.NoError(t, checklists.CreateItem(ctx, f.KitchenItem))
	require.NoError(t, checklists.CreateItem(ctx, f.BedroomItem))

	f.CheckSink = &entity.ChecklistTask{ChecklistItemId: f.KitchenItem.Id, Name: "Check sink", OrderIndex: 1}
	f.CheckStove = &entity.ChecklistTask{ChecklistItemId: f.KitchenItem.Id, Name: "Check stove", OrderIndex: 2}
	f.CheckWindows = &entity.ChecklistTask{ChecklistItemId: f.BedroomItem.Id, Name: "Check windows", OrderIndex: 1}
	for _, task := range []*entity.ChecklistTask{f.CheckSink, f.CheckStove, f.CheckWindows} {
		require.NoError(t, checklists.CreateTask(ctx, task))
	}

	f.WorkOrder = &entity.WorkOrder{ContractId: f.Contract.Id, Title: "Unit 12-04 handover", Status: entity.WorkOrderStatusOpen}
	require.NoError(t, workOrders.Create(ctx, f.WorkOrder))
	require.NoError(t, workOrders.AssignInspector(ctx, &entity.WorkOrderInspector{
		WorkOrderId: f.WorkOrder.Id,
		InspectorId: f.Inspector.Id,
		Position:    1,
	}))

	f.Kitchen = &entity.Location{WorkOrderId: f.WorkOrder.Id, Name: "Kitchen", OrderIndex: 1}
	f.Bedroom = &entity.Location{WorkOrderId: f.WorkOrder.Id, Name: "Bedroom", OrderIndex: 2}
	f.LivingRoom = &entity.Location{WorkOrderId: f.WorkOrder.Id, Name: "Living Room", OrderIndex: 3}
	for _, loc := range []*entity.Location{f.Kitchen, f.Bedroom, f.LivingRoom} {
		require.NoError(t, locations.Create(ctx, loc))
	}

	return f
}
