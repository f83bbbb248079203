// FILE: internal/service/work_order_status_service.go
package service

import (
	"context"
	"fmt"

	"inspection-be/internal/entity"
	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/repository/contract"
	"inspection-be/internal/repository/specification"
	"inspection-be/pkg/events"
	pktNats "inspection-be/pkg/nats"
)

const workOrderStatusDurable = "work-order-status"

// WorkOrderStatusService keeps work_orders.status in step with inspection
// progress: the first completed task moves OPEN to IN_PROGRESS, and
// WORK_ORDER_INSPECTION_COMPLETED moves it to COMPLETED.
type WorkOrderStatusService struct {
	workOrders contract.WorkOrderRepository
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewWorkOrderStatusService(workOrders contract.WorkOrderRepository, sub *pktNats.Subscriber, log logger.ILogger) *WorkOrderStatusService {
	return &WorkOrderStatusService{
		workOrders: workOrders,
		subscriber: sub,
		logger:     log,
	}
}

// Start attaches a durable JetStream consumer. Without NATS the service is
// registered as a direct event sink instead and Start is a no-op.
func (s *WorkOrderStatusService) Start(ctx context.Context) error {
	if s.subscriber == nil {
		return nil
	}
	if err := s.subscriber.Subscribe(ctx, pktNats.SubjectAll, workOrderStatusDurable, s.HandleEvent); err != nil {
		return fmt.Errorf("failed to subscribe work order status service: %w", err)
	}
	s.logger.Info("WorkOrderStatusService", "Listening for inspection events", map[string]interface{}{"subject": pktNats.SubjectAll})
	return nil
}

// Publish lets the service act as an in-process EventSink.
func (s *WorkOrderStatusService) Publish(ctx context.Context, event events.Event) error {
	return s.HandleEvent(ctx, event)
}

func (s *WorkOrderStatusService) HandleEvent(ctx context.Context, event events.Event) error {
	var target entity.WorkOrderStatus
	switch event.EventType() {
	case events.TypeTaskCompleted:
		target = entity.WorkOrderStatusInProgress
	case events.TypeWorkOrderInspectionCompleted:
		target = entity.WorkOrderStatusCompleted
	default:
		return nil
	}

	workOrderID, ok := events.WorkOrderID(event)
	if !ok {
		s.logger.Warn("WorkOrderStatusService", "Event without work order id", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	workOrder, err := s.workOrders.FindOne(ctx, specification.ByID{ID: workOrderID})
	if err != nil {
		return fmt.Errorf("failed to load work order: %w", err)
	}
	if workOrder == nil {
		return nil
	}

	// Only move forward; a late TASK_COMPLETED must not reopen a finished order.
	if !workOrder.IsOpen() || workOrder.Status == target ||
		(target == entity.WorkOrderStatusInProgress && workOrder.Status != entity.WorkOrderStatusOpen) {
		return nil
	}

	if err := s.workOrders.UpdateStatus(ctx, workOrderID, target); err != nil {
		return fmt.Errorf("failed to update work order status: %w", err)
	}

	s.logger.Info("WorkOrderStatusService", "Work order status updated", map[string]interface{}{
		"work_order_id": workOrderID.String(),
		"from":          string(workOrder.Status),
		"to":            string(target),
	})
	return nil
}
