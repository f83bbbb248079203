package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeTaskStarted                  = "TASK_STARTED"
	TypeTaskCompleted                = "TASK_COMPLETED"
	TypeMediaAttached                = "MEDIA_ATTACHED"
	TypeWorkOrderInspectionCompleted = "WORK_ORDER_INSPECTION_COMPLETED"
)

// Payload keys shared by every inspection event.
const (
	KeyWorkOrderID  = "work_order_id"
	KeyInspectorID  = "inspector_id"
	KeyLocation     = "location"
	KeyTaskID       = "task_id"
	KeyTaskName     = "task_name"
	KeyTaskEntryID  = "task_entry_id"
	KeyMediaURL     = "media_url"
	KeyOccurredAt   = "occurred_at"
	KeyCompletedCnt = "completed_tasks"
	KeyTotalCnt     = "total_tasks"
)

func newInspectionEvent(eventType string, workOrderID, inspectorID uuid.UUID, data map[string]interface{}) BaseEvent {
	now := time.Now().UTC()
	if data == nil {
		data = map[string]interface{}{}
	}
	data[KeyWorkOrderID] = workOrderID.String()
	data[KeyInspectorID] = inspectorID.String()
	data[KeyOccurredAt] = now.Format(time.RFC3339Nano)
	return BaseEvent{Type: eventType, Data: data, OccurredAt: now}
}

func NewTaskStarted(workOrderID, inspectorID, taskID uuid.UUID, location, taskName string) BaseEvent {
	return newInspectionEvent(TypeTaskStarted, workOrderID, inspectorID, map[string]interface{}{
		KeyTaskID:   taskID.String(),
		KeyLocation: location,
		KeyTaskName: taskName,
	})
}

func NewTaskCompleted(workOrderID, inspectorID, taskID, entryID uuid.UUID, location, taskName string, completed, total int) BaseEvent {
	return newInspectionEvent(TypeTaskCompleted, workOrderID, inspectorID, map[string]interface{}{
		KeyTaskID:       taskID.String(),
		KeyTaskEntryID:  entryID.String(),
		KeyLocation:     location,
		KeyTaskName:     taskName,
		KeyCompletedCnt: completed,
		KeyTotalCnt:     total,
	})
}

func NewMediaAttached(workOrderID, inspectorID, entryID uuid.UUID, mediaURL string) BaseEvent {
	return newInspectionEvent(TypeMediaAttached, workOrderID, inspectorID, map[string]interface{}{
		KeyTaskEntryID: entryID.String(),
		KeyMediaURL:    mediaURL,
	})
}

func NewWorkOrderInspectionCompleted(workOrderID, inspectorID uuid.UUID, total int) BaseEvent {
	return newInspectionEvent(TypeWorkOrderInspectionCompleted, workOrderID, inspectorID, map[string]interface{}{
		KeyCompletedCnt: total,
		KeyTotalCnt:     total,
	})
}

// WorkOrderID extracts the work order id from an event payload.
func WorkOrderID(e Event) (uuid.UUID, bool) {
	raw, ok := e.Payload()[KeyWorkOrderID].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
