// FILE: internal/service/checklist_resolver.go
package service

import (
	"context"
	"fmt"
	"time"

	"inspection-be/internal/entity"
	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/pkg/metrics"
	"inspection-be/internal/repository/contract"
	"inspection-be/internal/repository/specification"
	"inspection-be/pkg/resolve"
	"inspection-be/pkg/utils"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type IChecklistResolver interface {
	// ListLocationsWithStatus renders "1. Kitchen (Done)" style lines in location order.
	ListLocationsWithStatus(ctx context.Context, workOrderID uuid.UUID) ([]string, error)
	Locations(ctx context.Context, workOrderID uuid.UUID) ([]*entity.LocationProgress, error)
	// ResolveChecklistItemID maps a free-text location name to a checklist item.
	// A miss is a normal outcome, not an error.
	ResolveChecklistItemID(ctx context.Context, workOrderID uuid.UUID, name string) (uuid.UUID, bool)
	Tasks(ctx context.Context, workOrderID, checklistItemID uuid.UUID) ([]*entity.TaskProgress, error)
	// Progress counts completed tasks over every task reachable from the work
	// order's locations.
	Progress(ctx context.Context, workOrderID uuid.UUID) (completed, total int, err error)
}

type checklistQuery struct {
	WorkOrderID uuid.UUID
	Name        string // normalized
}

type checklistResolver struct {
	workOrders contract.WorkOrderRepository
	locations  contract.LocationRepository
	checklists contract.ChecklistRepository
	entries    contract.TaskEntryRepository
	cache      *cache.Cache
	logger     logger.ILogger
	metrics    *metrics.Metrics
	strategies []resolve.Strategy[checklistQuery, uuid.UUID]
}

func NewChecklistResolver(
	workOrders contract.WorkOrderRepository,
	locations contract.LocationRepository,
	checklists contract.ChecklistRepository,
	entries contract.TaskEntryRepository,
	cacheTTL time.Duration,
	log logger.ILogger,
	m *metrics.Metrics,
) IChecklistResolver {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Minute
	}
	r := &checklistResolver{
		workOrders: workOrders,
		locations:  locations,
		checklists: checklists,
		entries:    entries,
		cache:      cache.New(cacheTTL, 10*time.Minute),
		logger:     log,
		metrics:    m,
	}
	r.strategies = []resolve.Strategy[checklistQuery, uuid.UUID]{
		resolve.Func("cache", r.fromCache),
		resolve.Func("relational", r.fromRelationalWalk),
	}
	return r
}

func checklistCacheKey(q checklistQuery) string {
	return q.WorkOrderID.String() + "|" + q.Name
}

func (r *checklistResolver) ResolveChecklistItemID(ctx context.Context, workOrderID uuid.UUID, name string) (uuid.UUID, bool) {
	q := checklistQuery{WorkOrderID: workOrderID, Name: utils.NormalizeName(name)}
	if q.Name == "" {
		return uuid.Nil, false
	}

	id, tier, ok := resolve.FirstMatch(ctx, q, r.strategies...)
	if !ok {
		r.metrics.ObserveResolution("checklist_item", "miss")
		return uuid.Nil, false
	}
	r.metrics.ObserveResolution("checklist_item", tier)

	if tier != "cache" {
		r.cache.Set(checklistCacheKey(q), id, cache.DefaultExpiration)
	}
	return id, true
}

func (r *checklistResolver) fromCache(_ context.Context, q checklistQuery) (uuid.UUID, bool) {
	if x, found := r.cache.Get(checklistCacheKey(q)); found {
		return x.(uuid.UUID), true
	}
	return uuid.Nil, false
}

// fromRelationalWalk walks work order -> contract -> checklists -> items and
// returns the first item whose normalized name equals the query.
func (r *checklistResolver) fromRelationalWalk(ctx context.Context, q checklistQuery) (uuid.UUID, bool) {
	workOrder, err := r.workOrders.FindOne(ctx, specification.ByID{ID: q.WorkOrderID})
	if err != nil {
		r.logger.Warn("ChecklistResolver", "Work order lookup failed", map[string]interface{}{
			"work_order_id": q.WorkOrderID.String(),
			"error":         err.Error(),
		})
		return uuid.Nil, false
	}
	if workOrder == nil {
		return uuid.Nil, false
	}

	items, err := r.checklists.FindItemsByContract(ctx, workOrder.ContractId)
	if err != nil {
		r.logger.Warn("ChecklistResolver", "Checklist item lookup failed", map[string]interface{}{
			"work_order_id": q.WorkOrderID.String(),
			"contract_id":   workOrder.ContractId.String(),
			"error":         err.Error(),
		})
		return uuid.Nil, false
	}

	for _, item := range items {
		if utils.NormalizeName(item.Name) == q.Name {
			return item.Id, true
		}
	}
	return uuid.Nil, false
}

type checklistSnapshot struct {
	locations   []*entity.LocationProgress
	tasksByItem map[uuid.UUID][]*entity.ChecklistTask
	completed   map[uuid.UUID]bool
}

func (r *checklistResolver) snapshot(ctx context.Context, workOrderID uuid.UUID) (*checklistSnapshot, error) {
	workOrder, err := r.workOrders.FindOne(ctx, specification.ByID{ID: workOrderID})
	if err != nil {
		return nil, fmt.Errorf("failed to load work order: %w", err)
	}
	if workOrder == nil {
		return nil, ErrWorkOrderNotFound
	}

	locations, err := r.locations.FindAll(ctx, specification.ByWorkOrderID{WorkOrderID: workOrderID}, specification.Ordered{})
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}

	snap := &checklistSnapshot{
		locations:   make([]*entity.LocationProgress, len(locations)),
		tasksByItem: map[uuid.UUID][]*entity.ChecklistTask{},
		completed:   map[uuid.UUID]bool{},
	}
	var itemIDs []uuid.UUID
	for i, loc := range locations {
		snap.locations[i] = &entity.LocationProgress{Location: loc}
		if id, ok := r.ResolveChecklistItemID(ctx, workOrderID, loc.Name); ok {
			itemID := id
			snap.locations[i].ChecklistItemId = &itemID
			itemIDs = append(itemIDs, id)
		}
	}
	if len(itemIDs) == 0 {
		return snap, nil
	}

	tasks, err := r.checklists.FindTasks(ctx, specification.ByChecklistItemIDs{ChecklistItemIDs: itemIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist tasks: %w", err)
	}
	if snap.completed, err = r.entries.CompletedTaskIDs(ctx, workOrderID); err != nil {
		return nil, fmt.Errorf("failed to load task entries: %w", err)
	}

	for _, task := range tasks {
		snap.tasksByItem[task.ChecklistItemId] = append(snap.tasksByItem[task.ChecklistItemId], task)
	}
	for _, p := range snap.locations {
		if p.ChecklistItemId != nil {
			p.Done = allCompleted(snap.tasksByItem[*p.ChecklistItemId], snap.completed)
		}
	}
	return snap, nil
}

func (r *checklistResolver) Locations(ctx context.Context, workOrderID uuid.UUID) ([]*entity.LocationProgress, error) {
	snap, err := r.snapshot(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	return snap.locations, nil
}

func (r *checklistResolver) Progress(ctx context.Context, workOrderID uuid.UUID) (int, int, error) {
	snap, err := r.snapshot(ctx, workOrderID)
	if err != nil {
		return 0, 0, err
	}

	// Two locations may share one checklist item; count its tasks once.
	var completed, total int
	for _, tasks := range snap.tasksByItem {
		for _, task := range tasks {
			total++
			if snap.completed[task.Id] {
				completed++
			}
		}
	}
	return completed, total, nil
}

// allCompleted is false for an item without tasks.
func allCompleted(tasks []*entity.ChecklistTask, completed map[uuid.UUID]bool) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, task := range tasks {
		if !completed[task.Id] {
			return false
		}
	}
	return true
}

func (r *checklistResolver) ListLocationsWithStatus(ctx context.Context, workOrderID uuid.UUID) ([]string, error) {
	progress, err := r.Locations(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	return LocationLines(progress), nil
}

// LocationLines renders 1-based display lines, suffixing completed locations with "(Done)".
func LocationLines(progress []*entity.LocationProgress) []string {
	lines := make([]string, len(progress))
	for i, p := range progress {
		lines[i] = numberedLine(i, p.Location.Name, p.Done)
	}
	return lines
}

// TaskLines renders tasks the same way as LocationLines.
func TaskLines(progress []*entity.TaskProgress) []string {
	lines := make([]string, len(progress))
	for i, p := range progress {
		lines[i] = numberedLine(i, p.Task.Name, p.Done)
	}
	return lines
}

func numberedLine(i int, name string, done bool) string {
	line := fmt.Sprintf("%d. %s", i+1, name)
	if done {
		line += " (Done)"
	}
	return line
}

func (r *checklistResolver) Tasks(ctx context.Context, workOrderID, checklistItemID uuid.UUID) ([]*entity.TaskProgress, error) {
	tasks, err := r.checklists.FindTasks(ctx, specification.ByChecklistItemID{ChecklistItemID: checklistItemID}, specification.Ordered{})
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist tasks: %w", err)
	}
	completed, err := r.entries.CompletedTaskIDs(ctx, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task entries: %w", err)
	}

	progress := make([]*entity.TaskProgress, len(tasks))
	for i, task := range tasks {
		progress[i] = &entity.TaskProgress{Task: task, Done: completed[task.Id]}
	}
	return progress, nil
}
