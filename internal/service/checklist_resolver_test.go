package service

import (
	"context"
	"testing"
	"time"

	"inspection-be/internal/entity"
	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/pkg/testdb"
	"inspection-be/internal/repository/contract"
	"inspection-be/internal/repository/implementation"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// countingChecklistRepo counts relational walks through the checklist tree.
type countingChecklistRepo struct {
	contract.ChecklistRepository
	walks int
}

func (c *countingChecklistRepo) FindItemsByContract(ctx context.Context, contractId uuid.UUID) ([]*entity.ChecklistItem, error) {
	c.walks++
	return c.ChecklistRepository.FindItemsByContract(ctx, contractId)
}

func newTestChecklistResolver(db *gorm.DB) (*checklistResolver, *countingChecklistRepo) {
	counting := &countingChecklistRepo{ChecklistRepository: implementation.NewChecklistRepository(db)}
	r := NewChecklistResolver(
		implementation.NewWorkOrderRepository(db),
		implementation.NewLocationRepository(db),
		counting,
		implementation.NewTaskEntryRepository(db),
		time.Hour,
		logger.NewNopLogger(),
		nil,
	).(*checklistResolver)
	return r, counting
}

func completeTask(t *testing.T, db *gorm.DB, f *testdb.Fixture, task *entity.ChecklistTask) {
	t.Helper()
	now := time.Now()
	require.NoError(t, implementation.NewTaskEntryRepository(db).Create(context.Background(), &entity.TaskEntry{
		WorkOrderId:     f.WorkOrder.Id,
		ChecklistTaskId: task.Id,
		InspectorId:     f.Inspector.Id,
		Status:          entity.TaskEntryStatusCompleted,
		CompletedAt:     &now,
	}))
}

func TestChecklistResolver_ListLocationsWithStatus(t *testing.T) {
	db := testdb.New(t)
	f := testdb.Seed(t, db)
	r, _ := newTestChecklistResolver(db)
	ctx := context.Background()

	lines, err := r.ListLocationsWithStatus(ctx, f.WorkOrder.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{"1. Kitchen", "2. Bedroom", "3. Living Room"}, lines)

	completeTask(t, db, f, f.CheckSink)
	lines, err = r.ListLocationsWithStatus(ctx, f.WorkOrder.Id)
	require.NoError(t, err)
	assert.Equal(t, "1. Kitchen", lines[0], "one of two tasks done")

	completeTask(t, db, f, f.CheckStove)
	lines, err = r.ListLocationsWithStatus(ctx, f.WorkOrder.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{"1. Kitchen (Done)", "2. Bedroom", "3. Living Room"}, lines)
}

func TestChecklistResolver_UnknownWorkOrder(t *testing.T) {
	db := testdb.New(t)
	testdb.Seed(t, db)
	r, _ := newTestChecklistResolver(db)

	_, err := r.ListLocationsWithStatus(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrWorkOrderNotFound)
}

func TestChecklistResolver_ResolveByNormalizedName(t *testing.T) {
	db := testdb.New(t)
	f := testdb.Seed(t, db)
	r, _ := newTestChecklistResolver(db)
	ctx := context.Background()

	id, ok := r.ResolveChecklistItemID(ctx, f.WorkOrder.Id, "  KITCHEN!! ")
	require.True(t, ok)
	assert.Equal(t, f.KitchenItem.Id, id)

	_, ok = r.ResolveChecklistItemID(ctx, f.WorkOrder.Id, "Living Room")
	assert.False(t, ok, "no checklist item for this location")

	_, ok = r.ResolveChecklistItemID(ctx, f.WorkOrder.Id, "?!")
	assert.False(t, ok)
}

func TestChecklistResolver_PrefersCache(t *testing.T) {
	db := testdb.New(t)
	f := testdb.Seed(t, db)
	r, counting := newTestChecklistResolver(db)
	ctx := context.Background()

	cached := uuid.New()
	r.cache.Set(checklistCacheKey(checklistQuery{WorkOrderID: f.WorkOrder.Id, Name: "kitchen"}), cached, cache.DefaultExpiration)

	id, ok := r.ResolveChecklistItemID(ctx, f.WorkOrder.Id, "Kitchen")
	require.True(t, ok)
	assert.Equal(t, cached, id)
	assert.Zero(t, counting.walks, "relational fallback must not run on a cache hit")
}

func TestChecklistResolver_CachesRelationalResult(t *testing.T) {
	db := testdb.New(t)
	f := testdb.Seed(t, db)
	r, counting := newTestChecklistResolver(db)
	ctx := context.Background()

	_, ok := r.ResolveChecklistItemID(ctx, f.WorkOrder.Id, "Bedroom")
	require.True(t, ok)
	_, ok = r.ResolveChecklistItemID(ctx, f.WorkOrder.Id, "bedroom")
	require.True(t, ok)
	assert.Equal(t, 1, counting.walks)
}

func TestChecklistResolver_Tasks(t *testing.T) {
	db := testdb.New(t)
	f := testdb.Seed(t, db)
	r, _ := newTestChecklistResolver(db)
	completeTask(t, db, f, f.CheckStove)

	tasks, err := r.Tasks(context.Background(), f.WorkOrder.Id, f.KitchenItem.Id)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Check sink", tasks[0].Task.Name)
	assert.False(t, tasks[0].Done)
	assert.True(t, tasks[1].Done)
}

func TestChecklistResolver_Progress(t *testing.T) {
	db := testdb.New(t)
	f := testdb.Seed(t, db)
	r, _ := newTestChecklistResolver(db)
	ctx := context.Background()

	completed, total, err := r.Progress(ctx, f.WorkOrder.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, completed)
	assert.Equal(t, 3, total)

	completeTask(t, db, f, f.CheckWindows)
	completed, total, err = r.Progress(ctx, f.WorkOrder.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 3, total)
}
