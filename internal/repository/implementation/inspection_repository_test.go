package implementation_test

import (
	"context"
	"testing"

	"inspection-be/internal/entity"
	"inspection-be/internal/pkg/testdb"
	"inspection-be/internal/repository/implementation"
	"inspection-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectorRepository_FindByPhone(t *testing.T) {
	db := testdb.New(t)
	f := testdb.Seed(t, db)
	repo := implementation.NewInspectorRepository(db)
	ctx := context.Background()

	found, err := repo.FindByPhone(ctx, testdb.FixturePhone)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, f.Inspector.Id, found.Id)

	missing, err := repo.FindByPhone(ctx, "6591234567")
	require.NoError(t, err)
	assert.Nil(t, missing, "exact lookup does not try variants")
}

func TestInspectorRepository_FindAssignedInspectorsOrdersByPosition(t *testing.T) {
	db := testdb.New(t)
	f := testdb.Seed(t, db)
	inspectors := implementation.NewInspectorRepository(db)
	workOrders := implementation.NewWorkOrderRepository(db)
	ctx := context.Background()

	lead := &entity.Inspector{Name: "Ben Tan", Phone: "+6590000001"}
	require.NoError(t, inspectors.Create(ctx, lead))
	require.NoError(t, workOrders.AssignInspector(ctx, &entity.WorkOrderInspector{
		WorkOrderId: f.WorkOrder.Id,
		InspectorId: lead.Id,
		Position:    0,
	}))

	assigned, err := inspectors.FindAssignedInspectors(ctx, f.WorkOrder.Id)
	require.NoError(t, err)
	require.Len(t, assigned, 2)
	assert.Equal(t, lead.Id, assigned[0].Id)
	assert.Equal(t, f.Inspector.Id, assigned[1].Id)

	none, err := inspectors.FindAssignedInspectors(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWorkOrderRepository_FindOpenByInspector(t *testing.T) {
	db := testdb.New(t)
	f := testdb.Seed(t, db)
	repo := implementation.NewWorkOrderRepository(db)
	ctx := context.Background()

	open, err := repo.FindOpenByInspector(ctx, f.Inspector.Id)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, f.WorkOrder.Id, open[0].Id)

	require.NoError(t, repo.UpdateStatus(ctx, f.WorkOrder.Id, entity.WorkOrderStatusCompleted))

	open, err = repo.FindOpenByInspector(ctx, f.Inspector.Id)
	require.NoError(t, err)
	assert.Empty(t, open)

	closed, err := repo.FindOne(ctx, specification.ByID{ID: f.WorkOrder.Id})
	require.NoError(t, err)
	require.NotNil(t, closed)
	assert.Equal(t, entity.WorkOrderStatusCompleted, closed.Status)
	assert.NotNil(t, closed.CompletedAt)
}

func TestChecklistRepository_FindItemsByContract(t *testing.T) {
	db := testdb.New(t)
	f := testdb.Seed(t, db)
	repo := implementation.NewChecklistRepository(db)
	ctx := context.Background()

	items, err := repo.FindItemsByContract(ctx, f.Contract.Id)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Kitchen", items[0].Name)
	assert.Equal(t, "Bedroom", items[1].Name)

	tasks, err := repo.FindTasks(ctx, specification.ByChecklistItemID{ChecklistItemID: f.KitchenItem.Id}, specification.Ordered{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Check sink", tasks[0].Name)
}

func TestTaskEntryRepository_CompletedTaskIDs(t *testing.T) {
	db := testdb.New(t)
	f := testdb.Seed(t, db)
	repo := implementation.NewTaskEntryRepository(db)
	ctx := context.Background()

	done := &entity.TaskEntry{
		WorkOrderId:     f.WorkOrder.Id,
		ChecklistTaskId: f.CheckSink.Id,
		InspectorId:     f.Inspector.Id,
		Status:          entity.TaskEntryStatusCompleted,
		Metadata:        map[string]interface{}{"source": "whatsapp"},
	}
	pending := &entity.TaskEntry{
		WorkOrderId:     f.WorkOrder.Id,
		ChecklistTaskId: f.CheckStove.Id,
		InspectorId:     f.Inspector.Id,
	}
	require.NoError(t, repo.Create(ctx, done))
	require.NoError(t, repo.Create(ctx, pending))

	ids, err := repo.CompletedTaskIDs(ctx, f.WorkOrder.Id)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{f.CheckSink.Id: true}, ids)

	reloaded, err := repo.FindOne(ctx, specification.ByID{ID: done.Id})
	require.NoError(t, err)
	assert.Equal(t, "whatsapp", reloaded.Metadata["source"])
	assert.Equal(t, entity.TaskEntryStatusInProgress, pending.Status)

	duplicate := &entity.TaskEntry{WorkOrderId: f.WorkOrder.Id, ChecklistTaskId: f.CheckSink.Id, InspectorId: f.Inspector.Id}
	assert.Error(t, repo.Create(ctx, duplicate), "one entry per work order and task")
}

func TestTaskEntryRepository_AddMediaIsIdempotentByMessageID(t *testing.T) {
	db := testdb.New(t)
	f := testdb.Seed(t, db)
	repo := implementation.NewTaskEntryRepository(db)
	ctx := context.Background()

	entry := &entity.TaskEntry{WorkOrderId: f.WorkOrder.Id, ChecklistTaskId: f.CheckSink.Id, InspectorId: f.Inspector.Id}
	require.NoError(t, repo.Create(ctx, entry))

	created, err := repo.AddMedia(ctx, &entity.EntryMedia{TaskEntryId: entry.Id, ProviderMessageId: "wamid.1", Url: "https://cdn/1.jpg"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.AddMedia(ctx, &entity.EntryMedia{TaskEntryId: entry.Id, ProviderMessageId: "wamid.1", Url: "https://cdn/1.jpg"})
	require.NoError(t, err)
	assert.False(t, created)

	media, err := repo.FindMedia(ctx, specification.ByTaskEntryID{TaskEntryID: entry.Id})
	require.NoError(t, err)
	assert.Len(t, media, 1)
}
