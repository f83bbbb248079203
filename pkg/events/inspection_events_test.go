package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewTaskCompleted(t *testing.T) {
	wo, insp, task, entry := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	e := NewTaskCompleted(wo, insp, task, entry, "Kitchen", "Check sink", 1, 3)

	assert.Equal(t, TypeTaskCompleted, e.EventType())
	assert.Equal(t, "Kitchen", e.Payload()[KeyLocation])
	assert.Equal(t, 3, e.Payload()[KeyTotalCnt])
	assert.NotEmpty(t, e.Payload()[KeyOccurredAt])
	assert.False(t, e.Timestamp().IsZero())

	id, ok := WorkOrderID(e)
	assert.True(t, ok)
	assert.Equal(t, wo, id)
}

func TestWorkOrderIDMissing(t *testing.T) {
	_, ok := WorkOrderID(BaseEvent{Type: "X", Data: map[string]interface{}{}})
	assert.False(t, ok)

	_, ok = WorkOrderID(BaseEvent{Type: "X", Data: map[string]interface{}{KeyWorkOrderID: "nope"}})
	assert.False(t, ok)
}
